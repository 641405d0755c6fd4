package journal

import "context"

// Repository persists journal entries.
type Repository interface {
	// Save stores an entry. Saving an ID that already exists is a no-op,
	// so redelivered messages are harmless.
	Save(ctx context.Context, entry *Entry) error

	// Get retrieves an entry by ID.
	Get(ctx context.Context, id string) (*Entry, error)
}
