package dto

import (
	"time"

	"remindbot/internal/domain/entity"
)

// ReminderResponse is the DTO for sending reminder information to the client (e.g., listing reminders).
type ReminderResponse struct {
	Index      int               `json:"index"` // 1-based position in the scope's list
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	FireAt     time.Time         `json:"fire_at"`
	Recurrence entity.Recurrence `json:"recurrence"`
	Active     bool              `json:"active"`
	TargetType entity.TargetType `json:"target_type"`
	TargetID   string            `json:"target_id"`
}

// ToReminderResponse converts an entity.Reminder at a 1-based list index to a ReminderResponse DTO.
func ToReminderResponse(index int, r *entity.Reminder) ReminderResponse {
	return ReminderResponse{
		Index:      index,
		ID:         r.ID,
		Content:    r.Content,
		FireAt:     r.FireAt,
		Recurrence: r.Recurrence.OrNone(),
		Active:     r.Active,
		TargetType: r.Destination.TargetType,
		TargetID:   r.Destination.TargetID,
	}
}

// ToReminderResponseList converts an ordered slice of entity.Reminder to a slice of ReminderResponse DTOs.
func ToReminderResponseList(reminders []*entity.Reminder) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(i+1, r)
	}
	return list
}

// CreateReminderRequest is the DTO for creating a new reminder.
type CreateReminderRequest struct {
	Scope          string            `json:"scope"`
	OwnerID        string            `json:"owner_id"`
	TargetID       string            `json:"target_id"`   // defaults to OwnerID
	TargetType     entity.TargetType `json:"target_type"` // defaults to direct
	TimeExpression string            `json:"time_expression"`
	Content        string            `json:"content"`
	Recurrence     string            `json:"recurrence,omitempty"` // recurrence word in either locale
}

// IndexRequest addresses one reminder by its 1-based list index.
type IndexRequest struct {
	Scope string `json:"scope"`
	Index int    `json:"index"`
}

// ToggleReminderRequest is the DTO for pausing or resuming a reminder.
type ToggleReminderRequest struct {
	Scope  string `json:"scope"`
	Index  int    `json:"index"`
	Active bool   `json:"active"`
}

// ToggleResult reports the reminder after a toggle and whether anything changed.
type ToggleResult struct {
	Reminder ReminderResponse `json:"reminder"`
	Changed  bool             `json:"changed"`
}

// SchedulerStats are the delivery counters of the scheduler.
type SchedulerStats struct {
	Fired     int64 `json:"fired"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Live      int   `json:"live_timers"`
	Pending   int   `json:"pending_writes"`
}

// RecoveryReport summarises what startup recovery did.
type RecoveryReport struct {
	Scopes    int `json:"scopes"`
	Scheduled int `json:"scheduled"`
	Advanced  int `json:"advanced"`
	Fired     int `json:"fired"`
	Dropped   int `json:"dropped"`
	Paused    int `json:"paused"`
}
