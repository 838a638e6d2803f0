package records

import (
	"context"
	"errors"
	"time"
)

const (
	// HourlyRate is the flat rate paid per hour of recorded care.
	HourlyRate = 1.0
	// EarningsWindow is how far back weekly earnings look from the request time.
	EarningsWindow = 7 * 24 * time.Hour
)

var (
	ErrNoSessions = errors.New("client not found or no recorded hours in the last week")
	ErrNoEarnings = errors.New("no data found for earnings summary")
)

type Earnings struct {
	TotalEarnings float64 `json:"total_earnings"`
}

type EarningsSummary struct {
	ID            int64   `json:"id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	TotalEarnings float64 `json:"total_earnings"`
}

// WeeklyEarnings returns the earnings of clientID for sessions started in
// [now-EarningsWindow, now].
func WeeklyEarnings(ctx context.Context, store Store, clientID int64, now time.Time) (Earnings, error) {
	hours, found, err := store.ClientHours(ctx, clientID, now.Add(-EarningsWindow), now)
	if err != nil {
		return Earnings{}, err
	}
	if !found {
		return Earnings{}, ErrNoSessions
	}
	return Earnings{TotalEarnings: hours * HourlyRate}, nil
}

// SummarizeEarnings returns all-time earnings per client, highest first.
func SummarizeEarnings(ctx context.Context, store Store) ([]EarningsSummary, error) {
	totals, err := store.HoursSummary(ctx)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, ErrNoEarnings
	}
	out := make([]EarningsSummary, 0, len(totals))
	for _, t := range totals {
		out = append(out, EarningsSummary{
			ID:            t.ClientID,
			FirstName:     t.FirstName,
			LastName:      t.LastName,
			TotalEarnings: t.Hours * HourlyRate,
		})
	}
	return out, nil
}
