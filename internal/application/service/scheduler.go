package service

import (
	"context"

	"remindbot/internal/application/dto"
	"remindbot/internal/domain/entity"
)

// SchedulerService defines the interface for scheduling operations.
//
// ScheduleReminder and CancelReminderSchedule expect the caller to hold the
// reminder's scope lock (see ReminderBook.Lock), which serialises them with
// the firing of the same reminder.
type SchedulerService interface {
	// ScheduleReminder arms one timer for the reminder at its FireAt,
	// replacing any timer already armed for the same id.
	ScheduleReminder(ctx context.Context, reminder *entity.Reminder) error
	// CancelReminderSchedule disarms the timer of a reminder. Unknown ids are a no-op.
	CancelReminderSchedule(ctx context.Context, reminderID string) error
	// IsScheduled reports whether a live timer exists for the id.
	IsScheduled(reminderID string) bool
	// InitializeSchedules loads every persisted scope and re-arms reminders on startup.
	InitializeSchedules(ctx context.Context) (dto.RecoveryReport, error)
	// Reconcile retries pending store writes.
	Reconcile(ctx context.Context)
	// Stats returns delivery counters.
	Stats() dto.SchedulerStats
	// Stop cancels in-flight deliveries and stops the underlying scheduler.
	Stop()
}
