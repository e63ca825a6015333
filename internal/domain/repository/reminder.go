package repository

import (
	"context"

	"remindbot/internal/domain/entity"
)

// ReminderRepository is the durable store of reminders, partitioned by scope.
// Each scope persists independently.
type ReminderRepository interface {
	// Load returns every reminder of a scope in insertion order (by Position).
	// An unknown scope yields an empty slice.
	Load(ctx context.Context, scope string) ([]*entity.Reminder, error)
	// Put inserts or replaces the reminder with the same ID in the scope.
	Put(ctx context.Context, scope string, reminder *entity.Reminder) error
	// Delete removes a reminder by ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, scope string, id string) error
	// Scopes lists every scope that has persisted reminders (used on startup).
	Scopes(ctx context.Context) ([]string, error)
	// Close releases the underlying storage.
	Close() error
}
