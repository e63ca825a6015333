// Package bolt stores reminders in an embedded bbolt file: one nested bucket
// per scope under a root bucket, one JSON value per reminder id.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/repository"
	appErrors "remindbot/internal/pkg/errors"
)

var rootBucket = []byte("reminders")

// record is the stored JSON. Fields added after the first release are
// pointers so older values decode with defaults.
type record struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type,omitempty"`
	Content    string    `json:"content"`
	FireAt     time.Time `json:"fire_at"`
	Recurrence *string   `json:"recurrence,omitempty"`
	AnchorDay  *int      `json:"anchor_day,omitempty"`
	Active     *bool     `json:"active,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Position   int64     `json:"position"`
}

func toRecord(r *entity.Reminder) record {
	rec := string(r.Recurrence.OrNone())
	anchor := r.AnchorDay
	active := r.Active
	return record{
		ID:         r.ID,
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

func (rec record) toEntity(scope, key string) *entity.Reminder {
	r := &entity.Reminder{
		ID:      rec.ID,
		Scope:   scope,
		OwnerID: rec.OwnerID,
		Destination: entity.Destination{
			TargetID:   rec.TargetID,
			TargetType: entity.TargetType(rec.TargetType),
		},
		Content:    rec.Content,
		FireAt:     rec.FireAt,
		Recurrence: entity.RecurrenceNone,
		Active:     true,
		CreatedAt:  rec.CreatedAt,
		Position:   rec.Position,
	}
	if r.ID == "" {
		r.ID = key
	}
	if r.OwnerID == "" {
		r.OwnerID = scope
	}
	if r.Destination.TargetID == "" {
		r.Destination.TargetID = r.OwnerID
	}
	if r.Destination.TargetType == "" {
		r.Destination.TargetType = entity.TargetDirect
	}
	if rec.Recurrence != nil {
		r.Recurrence = entity.Recurrence(*rec.Recurrence).OrNone()
	}
	if rec.AnchorDay != nil {
		r.AnchorDay = *rec.AnchorDay
	}
	if rec.Active != nil {
		r.Active = *rec.Active
	}
	return r
}

type reminderRepository struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the bolt file at path.
func Open(path string) (repository.ReminderRepository, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: 🔴 ERROR: failed to open bolt file %s: %v", appErrors.ErrDatabaseOperation, path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: 🔴 ERROR: failed to create root bucket: %v", appErrors.ErrDatabaseOperation, err)
	}
	return &reminderRepository{db: db}, nil
}

// Load returns a scope's reminders ordered by position, then creation time.
// Values that fail to decode are skipped.
func (r *reminderRepository) Load(ctx context.Context, scope string) ([]*entity.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var reminders []*entity.Reminder
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(scope))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if v == nil {
				return nil
			}
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			reminders = append(reminders, rec.toEntity(scope, string(k)))
			return nil
		})
	})
	if err != nil {
		return nil, wrap(err, "failed to load reminders of scope "+scope)
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return reminders, nil
}

// Put writes the reminder under its id, replacing any previous value.
func (r *reminderRepository) Put(ctx context.Context, scope string, reminder *entity.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(toRecord(reminder))
	if err != nil {
		return fmt.Errorf("%w: 🔴 ERROR: failed to encode reminder %s: %v", appErrors.ErrDatabaseOperation, reminder.ID, err)
	}
	err = r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return err
		}
		return b.Put([]byte(reminder.ID), data)
	})
	return wrap(err, "failed to save reminder "+reminder.ID)
}

// Delete removes a reminder. Deleting an unknown id is not an error.
func (r *reminderRepository) Delete(ctx context.Context, scope, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(rootBucket)
		b := root.Bucket([]byte(scope))
		if b == nil {
			return nil
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}
		if k, _ := b.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(scope))
		}
		return nil
	})
	return wrap(err, "failed to delete reminder "+id)
}

// Scopes lists the scope buckets in key order.
func (r *reminderRepository) Scopes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var scopes []string
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(rootBucket).ForEach(func(k, v []byte) error {
			if v == nil {
				scopes = append(scopes, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrap(err, "failed to list scopes")
	}
	return scopes, nil
}

func (r *reminderRepository) Close() error {
	return r.db.Close()
}

func wrap(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bbolt.ErrDatabaseNotOpen):
		return appErrors.ErrStoreClosed
	default:
		return fmt.Errorf("%w: 🔴 ERROR: %s: %v", appErrors.ErrDatabaseOperation, what, err)
	}
}
