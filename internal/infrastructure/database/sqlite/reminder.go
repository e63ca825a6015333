package sqlite

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/repository"
	appErrors "remindbot/internal/pkg/errors"
)

// reminderRow is the persisted shape of a reminder. Optional columns are
// pointers so rows written by older schemas load with defaults.
type reminderRow struct {
	ID         string    `gorm:"primaryKey"`
	Scope      string    `gorm:"index;not null"`
	OwnerID    string    `gorm:"not null"`
	TargetID   string    `gorm:"not null"`
	TargetType string    `gorm:"not null"`
	Content    string    `gorm:"not null"`
	FireAt     time.Time `gorm:"index;not null"`
	Recurrence *string
	AnchorDay  *int
	Active     *bool
	CreatedAt  time.Time
	Position   int64 `gorm:"index"`
}

func (reminderRow) TableName() string {
	return "reminders"
}

func toRow(scope string, r *entity.Reminder) *reminderRow {
	rec := string(r.Recurrence.OrNone())
	anchor := r.AnchorDay
	active := r.Active
	return &reminderRow{
		ID:         r.ID,
		Scope:      scope,
		OwnerID:    r.OwnerID,
		TargetID:   r.Destination.TargetID,
		TargetType: string(r.Destination.TargetType),
		Content:    r.Content,
		FireAt:     r.FireAt,
		Recurrence: &rec,
		AnchorDay:  &anchor,
		Active:     &active,
		CreatedAt:  r.CreatedAt,
		Position:   r.Position,
	}
}

func (row *reminderRow) toEntity() *entity.Reminder {
	r := &entity.Reminder{
		ID:      row.ID,
		Scope:   row.Scope,
		OwnerID: row.OwnerID,
		Destination: entity.Destination{
			TargetID:   row.TargetID,
			TargetType: entity.TargetType(row.TargetType),
		},
		Content:    row.Content,
		FireAt:     row.FireAt,
		Recurrence: entity.RecurrenceNone,
		Active:     true,
		CreatedAt:  row.CreatedAt,
		Position:   row.Position,
	}
	if row.Recurrence != nil {
		r.Recurrence = entity.Recurrence(*row.Recurrence).OrNone()
	}
	if row.AnchorDay != nil {
		r.AnchorDay = *row.AnchorDay
	}
	if row.Active != nil {
		r.Active = *row.Active
	}
	if r.Destination.TargetType == "" {
		r.Destination.TargetType = entity.TargetDirect
	}
	return r
}

type reminderRepository struct {
	db     *gorm.DB
	closed atomic.Bool
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *gorm.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

// Load retrieves every reminder of a scope in insertion order.
func (r *reminderRepository) Load(ctx context.Context, scope string) ([]*entity.Reminder, error) {
	if r.closed.Load() {
		return nil, appErrors.ErrStoreClosed
	}
	var rows []*reminderRow
	if err := r.db.WithContext(ctx).
		Where("scope = ?", scope).
		Order("position asc, created_at asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: 🔴 ERROR: failed to load reminders of scope %s: %v", appErrors.ErrDatabaseOperation, scope, err)
	}
	reminders := make([]*entity.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, row.toEntity())
	}
	return reminders, nil
}

// Put inserts the reminder or replaces the stored copy with the same id.
func (r *reminderRepository) Put(ctx context.Context, scope string, reminder *entity.Reminder) error {
	if r.closed.Load() {
		return appErrors.ErrStoreClosed
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(toRow(scope, reminder)).Error
	if err != nil {
		return fmt.Errorf("%w: 🔴 ERROR: failed to save reminder %s: %v", appErrors.ErrDatabaseOperation, reminder.ID, err)
	}
	return nil
}

// Delete removes a reminder. Deleting an unknown id is not an error.
func (r *reminderRepository) Delete(ctx context.Context, scope, id string) error {
	if r.closed.Load() {
		return appErrors.ErrStoreClosed
	}
	if err := r.db.WithContext(ctx).Where("scope = ? AND id = ?", scope, id).Delete(&reminderRow{}).Error; err != nil {
		return fmt.Errorf("%w: 🔴 ERROR: failed to delete reminder %s: %v", appErrors.ErrDatabaseOperation, id, err)
	}
	return nil
}

// Scopes lists every scope that has at least one stored reminder.
func (r *reminderRepository) Scopes(ctx context.Context) ([]string, error) {
	if r.closed.Load() {
		return nil, appErrors.ErrStoreClosed
	}
	var scopes []string
	if err := r.db.WithContext(ctx).Model(&reminderRow{}).Distinct("scope").Order("scope").Pluck("scope", &scopes).Error; err != nil {
		return nil, fmt.Errorf("%w: 🔴 ERROR: failed to list scopes: %v", appErrors.ErrDatabaseOperation, err)
	}
	return scopes, nil
}

// Close closes the underlying connection. Later calls fail with ErrStoreClosed.
func (r *reminderRepository) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return Close(r.db)
}
