package service

import (
	"context"

	"remindbot/internal/application/dto"
)

// ReminderService defines the interface for reminder-related business logic.
// Indexes are 1-based positions in the list returned by ListReminders.
type ReminderService interface {
	// CreateReminder parses the time expression, stores the reminder and arms its timer.
	CreateReminder(ctx context.Context, req dto.CreateReminderRequest) (dto.ReminderResponse, error)
	// ListReminders returns every reminder of a scope, active and paused, in insertion order.
	ListReminders(ctx context.Context, scope string) ([]dto.ReminderResponse, error)
	// GetReminder returns the reminder at an index.
	GetReminder(ctx context.Context, req dto.IndexRequest) (dto.ReminderResponse, error)
	// DeleteReminder cancels and removes the reminder at an index.
	DeleteReminder(ctx context.Context, req dto.IndexRequest) (dto.ReminderResponse, error)
	// ToggleReminder pauses or resumes the reminder at an index.
	ToggleReminder(ctx context.Context, req dto.ToggleReminderRequest) (dto.ToggleResult, error)
	// ClearReminders removes every reminder of a scope and returns how many were removed.
	ClearReminders(ctx context.Context, scope string) (int, error)
}
