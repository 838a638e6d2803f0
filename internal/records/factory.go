package records

import (
	"context"
	"strings"
)

// MemoryURL selects the in-memory store instead of PostgreSQL.
const MemoryURL = "memory://"

// NewStore creates a postgres-backed store, or an in-memory one when the URL
// is empty or MemoryURL.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	url := strings.TrimSpace(databaseURL)
	if url == "" || strings.EqualFold(url, MemoryURL) {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, url)
}
