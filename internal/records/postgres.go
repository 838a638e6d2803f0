package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

const clientColumns = `id, first_name, last_name, email, phone_number, other_details`

const sessionColumns = `id, client_id, duration, started_at, ended_at, comments`

// PostgresStore persists clients and sessions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone_number BIGINT NOT NULL,
			other_details TEXT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			client_id BIGINT NOT NULL REFERENCES clients(id),
			duration INTERVAL NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL,
			comments TEXT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_client_started ON sessions (client_id, started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, fields ClientFields) (Client, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone_number, other_details)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+clientColumns,
		fields.FirstName, fields.LastName, fields.Email, fields.PhoneNumber, fields.OtherDetails,
	)
	c, err := scanClient(row)
	if err != nil {
		return Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Client, error) {
		return scanClient(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan clients: %w", err)
	}
	return clients, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id int64) (Client, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, id int64, patch ClientPatch) (Client, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE clients
		 SET first_name = COALESCE($1, first_name),
		     last_name = COALESCE($2, last_name),
		     email = COALESCE($3, email),
		     phone_number = COALESCE($4, phone_number),
		     other_details = COALESCE($5, other_details)
		 WHERE id = $6
		 RETURNING `+clientColumns,
		patch.FirstName, patch.LastName, patch.Email, patch.PhoneNumber, patch.OtherDetails, id,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ReplaceClient(ctx context.Context, id int64, fields ClientFields) (Client, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE clients
		 SET first_name = $1, last_name = $2, email = $3, phone_number = $4, other_details = $5
		 WHERE id = $6
		 RETURNING `+clientColumns,
		fields.FirstName, fields.LastName, fields.Email, fields.PhoneNumber, fields.OtherDetails, id,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, fmt.Errorf("replace client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrClientInUse
		}
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RecordSession(ctx context.Context, fields SessionFields) (Session, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (client_id, duration, started_at, ended_at, comments)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+sessionColumns,
		fields.ClientID, toInterval(fields.Duration), fields.StartedAt, fields.EndedAt, fields.Comments,
	)
	sess, err := scanSession(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Session{}, ErrUnknownClient
		}
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Session, error) {
		return scanSession(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

func (s *PostgresStore) ClientHours(ctx context.Context, clientID int64, from, to time.Time) (float64, bool, error) {
	var (
		hours float64
		count int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(EXTRACT(EPOCH FROM duration) / 3600), 0)::float8, COUNT(*)
		 FROM sessions
		 WHERE client_id = $1 AND started_at >= $2 AND started_at <= $3`,
		clientID, from, to,
	).Scan(&hours, &count)
	if err != nil {
		return 0, false, fmt.Errorf("sum client hours: %w", err)
	}
	return hours, count > 0, nil
}

func (s *PostgresStore) HoursSummary(ctx context.Context) ([]ClientHours, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.first_name, c.last_name,
		        SUM(EXTRACT(EPOCH FROM s.duration) / 3600)::float8 AS total_hours
		 FROM clients c
		 INNER JOIN sessions s ON s.client_id = c.id
		 GROUP BY c.id, c.first_name, c.last_name
		 ORDER BY total_hours DESC, c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query hours summary: %w", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ClientHours, error) {
		var t ClientHours
		err := row.Scan(&t.ClientID, &t.FirstName, &t.LastName, &t.Hours)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan hours summary: %w", err)
	}
	return totals, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.OtherDetails)
	return c, err
}

func scanSession(row rowScanner) (Session, error) {
	var (
		sess     Session
		interval pgtype.Interval
	)
	if err := row.Scan(&sess.ID, &sess.ClientID, &interval, &sess.StartedAt, &sess.EndedAt, &sess.Comments); err != nil {
		return Session{}, err
	}
	sess.Duration = fromInterval(interval)
	sess.StartedAt = sess.StartedAt.UTC()
	sess.EndedAt = sess.EndedAt.UTC()
	return sess, nil
}

func toInterval(d Duration) pgtype.Interval {
	return pgtype.Interval{Microseconds: time.Duration(d).Microseconds(), Valid: true}
}

// fromInterval flattens an interval to a fixed duration, counting a month as
// 30 days the way EXTRACT(EPOCH FROM ...) does.
func fromInterval(iv pgtype.Interval) Duration {
	if !iv.Valid {
		return 0
	}
	d := time.Duration(iv.Microseconds) * time.Microsecond
	d += time.Duration(iv.Days) * 24 * time.Hour
	d += time.Duration(iv.Months) * 30 * 24 * time.Hour
	return Duration(d)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
