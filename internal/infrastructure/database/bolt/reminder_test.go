package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"remindbot/internal/domain/entity"
	appErrors "remindbot/internal/pkg/errors"
)

func openTest(t *testing.T) *reminderRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "reminders.bolt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo.(*reminderRepository)
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	repo := openTest(t)
	ctx := context.Background()
	fireAt := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	created := fireAt.Add(-48 * time.Hour)

	in := []*entity.Reminder{
		{ID: "U1_3", OwnerID: "U1", Content: "third", FireAt: fireAt, Recurrence: entity.RecurrenceDaily, Active: true, CreatedAt: created, Position: 2,
			Destination: entity.Destination{TargetID: "U1", TargetType: entity.TargetDirect}},
		{ID: "U1_1", OwnerID: "U1", Content: "first", FireAt: fireAt, Recurrence: entity.RecurrenceMonthly, AnchorDay: 31, Active: false, CreatedAt: created, Position: 0,
			Destination: entity.Destination{TargetID: "C1", TargetType: entity.TargetGroup}},
		{ID: "U1_2", OwnerID: "U1", Content: "second", FireAt: fireAt, Active: true, CreatedAt: created, Position: 1,
			Destination: entity.Destination{TargetID: "U1", TargetType: entity.TargetDirect}},
	}
	for _, r := range in {
		if err := repo.Put(ctx, "U1", r); err != nil {
			t.Fatalf("Put %s: %v", r.ID, err)
		}
	}

	got, err := repo.Load(ctx, "U1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 3 || got[0].ID != "U1_1" || got[1].ID != "U1_2" || got[2].ID != "U1_3" {
		t.Fatalf("unexpected order: %+v", got)
	}
	first := got[0]
	if first.Active || first.Recurrence != entity.RecurrenceMonthly || first.AnchorDay != 31 ||
		first.Scope != "U1" || first.Destination.TargetType != entity.TargetGroup || !first.FireAt.Equal(fireAt) {
		t.Fatalf("round trip mismatch: %+v", first)
	}
	if got[1].Recurrence != entity.RecurrenceNone {
		t.Fatalf("zero recurrence should load as none, got %q", got[1].Recurrence)
	}

	if err := repo.Delete(ctx, "U1", "U1_2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = repo.Load(ctx, "U1")
	if len(got) != 2 {
		t.Fatalf("Load after delete = %d items", len(got))
	}
}

func TestRepositoryScopes(t *testing.T) {
	t.Parallel()
	repo := openTest(t)
	ctx := context.Background()
	for _, scope := range []string{"U2", "U1"} {
		r := &entity.Reminder{ID: scope + "_1", OwnerID: scope, Content: "x", FireAt: time.Now(), Active: true}
		if err := repo.Put(ctx, scope, r); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	scopes, err := repo.Scopes(ctx)
	if err != nil || len(scopes) != 2 || scopes[0] != "U1" || scopes[1] != "U2" {
		t.Fatalf("Scopes = %v, %v", scopes, err)
	}

	// removing the last reminder drops the scope
	if err := repo.Delete(ctx, "U2", "U2_1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "nobody", "x"); err != nil {
		t.Fatalf("Delete in unknown scope: %v", err)
	}
	scopes, _ = repo.Scopes(ctx)
	if len(scopes) != 1 || scopes[0] != "U1" {
		t.Fatalf("Scopes after delete = %v", scopes)
	}
}

func TestRepositoryDefaultsForOldValues(t *testing.T) {
	t.Parallel()
	repo := openTest(t)
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte("U7"))
		if err != nil {
			return err
		}
		if err := b.Put([]byte("broken"), []byte("{not json")); err != nil {
			return err
		}
		return b.Put([]byte("U7_1"), []byte(`{"content":"legacy","fire_at":"2026-01-01T08:00:00Z"}`))
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := repo.Load(context.Background(), "U7")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the undecodable value to be skipped, got %d", len(got))
	}
	r := got[0]
	if r.ID != "U7_1" || r.OwnerID != "U7" || !r.Active || r.Recurrence != entity.RecurrenceNone ||
		r.Destination.TargetID != "U7" || r.Destination.TargetType != entity.TargetDirect {
		t.Fatalf("defaults not applied: %+v", r)
	}
}

func TestRepositoryClosed(t *testing.T) {
	t.Parallel()
	repo := openTest(t)
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := repo.Load(context.Background(), "U1"); !errors.Is(err, appErrors.ErrStoreClosed) {
		t.Fatalf("Load after Close = %v", err)
	}
}
