package records

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("client not found")
	ErrUnknownClient = errors.New("client_id does not reference an existing client")
	ErrClientInUse   = errors.New("client has recorded sessions")
)

// ClientFields holds every client attribute except the store-generated id.
type ClientFields struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	PhoneNumber  int64   `json:"phone_number"`
	OtherDetails *string `json:"other_details"`
}

// Client is a care recipient record.
type Client struct {
	ID int64 `json:"id"`
	ClientFields
}

// ClientPatch carries the fields of a partial update. Nil fields keep the
// stored value.
type ClientPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PhoneNumber  *int64
	OtherDetails *string
}

func (p ClientPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.PhoneNumber == nil && p.OtherDetails == nil
}

// SessionFields describes a logged unit of care time.
type SessionFields struct {
	ClientID  int64     `json:"client_id"`
	Duration  Duration  `json:"duration"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Comments  *string   `json:"comments"`
}

type Session struct {
	ID int64 `json:"id"`
	SessionFields
}

// ClientHours is the total session time recorded for one client.
type ClientHours struct {
	ClientID  int64
	FirstName string
	LastName  string
	Hours     float64
}

// Store persists clients and sessions.
type Store interface {
	CreateClient(ctx context.Context, fields ClientFields) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	UpdateClient(ctx context.Context, id int64, patch ClientPatch) (Client, error)
	ReplaceClient(ctx context.Context, id int64, fields ClientFields) (Client, error)
	DeleteClient(ctx context.Context, id int64) error

	RecordSession(ctx context.Context, fields SessionFields) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)

	// ClientHours sums the hours of sessions for clientID whose started_at
	// falls within [from, to]. found is false when no session matched.
	ClientHours(ctx context.Context, clientID int64, from, to time.Time) (hours float64, found bool, err error)
	// HoursSummary totals all session hours per client that has sessions,
	// highest first.
	HoursSummary(ctx context.Context) ([]ClientHours, error)

	Ping(ctx context.Context) error
	Close() error
}
