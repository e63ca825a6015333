package entity

import (
	"fmt"
	"strings"
	"time"

	appErrors "remindbot/internal/pkg/errors"
)

// TargetType is the kind of conversation a reminder is delivered to.
type TargetType string

const (
	TargetDirect TargetType = "direct"
	TargetGroup  TargetType = "group"
)

// ParseTargetType parses "direct" or "group".
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetDirect, TargetGroup:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", appErrors.ErrUnknownTargetType, s)
	}
}

// Destination is where a reminder is delivered.
type Destination struct {
	TargetID   string     `json:"target_id"`
	TargetType TargetType `json:"target_type"`
}

// Reminder represents a reminder content and its next fire time.
type Reminder struct {
	ID          string      `json:"id"`
	Scope       string      `json:"scope"`
	OwnerID     string      `json:"owner_id"`
	Destination Destination `json:"destination"`
	Content     string      `json:"content"`
	FireAt      time.Time   `json:"fire_at"`
	Recurrence  Recurrence  `json:"recurrence"`
	AnchorDay   int         `json:"anchor_day,omitempty"` // day-of-month monthly recurrence aims for
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	Position    int64       `json:"position"` // insertion order inside the scope
}

// NewReminderID builds the id of a reminder from its owner and creation time.
func NewReminderID(ownerID string, createdAt time.Time) string {
	return fmt.Sprintf("%s_%d", ownerID, createdAt.UnixNano())
}

// Clone returns a copy that shares nothing mutable with r.
func (r *Reminder) Clone() *Reminder {
	c := *r
	return &c
}

// Anchor returns the day-of-month used by monthly recurrence.
func (r *Reminder) Anchor() int {
	if r.AnchorDay >= 1 && r.AnchorDay <= 31 {
		return r.AnchorDay
	}
	return r.FireAt.Day()
}

// NextFire returns the fire time following the current one, or false for a
// one-shot reminder.
func (r *Reminder) NextFire() (time.Time, bool) {
	return r.Recurrence.Next(r.FireAt, r.Anchor())
}

// NextFireAfter returns the first occurrence strictly after now.
func (r *Reminder) NextFireAfter(now time.Time) (time.Time, bool) {
	return r.Recurrence.NextAfter(r.FireAt, r.Anchor(), now)
}

// MovedTo returns a copy of r firing at next. Monthly reminders keep the
// anchor day they had before the move.
func (r *Reminder) MovedTo(next time.Time) *Reminder {
	c := r.Clone()
	if c.Recurrence == RecurrenceMonthly {
		c.AnchorDay = r.Anchor()
	}
	c.FireAt = next
	return c
}
