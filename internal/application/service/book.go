package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/repository"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
)

// ReminderBook is the in-memory authority over reminders. It keeps one state
// per scope, serialises mutations of a scope behind that scope's lock and
// writes every change through to the repository. Writes that fail stay pending
// and are retried by the next flush of the scope.
type ReminderBook struct {
	repo repository.ReminderRepository
	loc  *time.Location
	log  logger.Logger

	mu     sync.Mutex
	scopes map[string]*scopeState
}

// scopeState is only touched while its mu is held.
type scopeState struct {
	mu      sync.Mutex
	scope   string
	loaded  bool
	order   []string
	records map[string]*entity.Reminder
	dirty   map[string]struct{} // ids whose latest value is not yet stored
	removed map[string]struct{} // ids deleted in memory but not yet in the store
	nextPos int64
}

// NewReminderBook creates a ReminderBook backed by repo. Loaded times are
// moved into loc, or time.Local when loc is nil.
func NewReminderBook(repo repository.ReminderRepository, loc *time.Location, log logger.Logger) *ReminderBook {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderBook{
		repo:   repo,
		loc:    loc,
		log:    log,
		scopes: make(map[string]*scopeState),
	}
}

// Lock acquires the scope, loading it from the repository on first use. The
// returned func releases it.
func (b *ReminderBook) Lock(ctx context.Context, scope string) (*scopeState, func(), error) {
	b.mu.Lock()
	st, ok := b.scopes[scope]
	if !ok {
		st = &scopeState{scope: scope}
		b.scopes[scope] = st
	}
	b.mu.Unlock()

	st.mu.Lock()
	if !st.loaded {
		if err := b.load(ctx, st); err != nil {
			st.mu.Unlock()
			return nil, nil, err
		}
	}
	return st, st.mu.Unlock, nil
}

func (b *ReminderBook) load(ctx context.Context, st *scopeState) error {
	reminders, err := b.repo.Load(ctx, st.scope)
	if err != nil {
		b.log.Error(fmt.Sprintf("Failed to load reminders of scope %s", st.scope), err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	st.order = make([]string, 0, len(reminders))
	st.records = make(map[string]*entity.Reminder, len(reminders))
	st.dirty = make(map[string]struct{})
	st.removed = make(map[string]struct{})
	st.nextPos = 0
	for _, r := range reminders {
		if _, dup := st.records[r.ID]; dup {
			continue
		}
		r.Scope = st.scope
		r.Recurrence = r.Recurrence.OrNone()
		// stores hand back UTC or offset-only zones; recurrence and
		// rendering work on the configured wall clock
		r.FireAt = r.FireAt.In(b.loc)
		r.CreatedAt = r.CreatedAt.In(b.loc)
		st.order = append(st.order, r.ID)
		st.records[r.ID] = r
		if r.Position >= st.nextPos {
			st.nextPos = r.Position + 1
		}
	}
	st.loaded = true
	b.log.Debug(fmt.Sprintf("Loaded %d reminders of scope %s", len(reminders), st.scope))
	return nil
}

// Scopes lists the scopes known to the repository.
func (b *ReminderBook) Scopes(ctx context.Context) ([]string, error) {
	scopes, err := b.repo.Scopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	return scopes, nil
}

// Flush writes the pending changes of a locked scope and returns how many are
// still pending afterwards. Failures are logged, never returned.
func (b *ReminderBook) Flush(ctx context.Context, st *scopeState) int {
	for id := range st.removed {
		if err := b.repo.Delete(ctx, st.scope, id); err != nil {
			b.log.Error(fmt.Sprintf("Failed to delete reminder %s of scope %s, will retry", id, st.scope), err)
			continue
		}
		delete(st.removed, id)
	}
	for id := range st.dirty {
		r, ok := st.records[id]
		if !ok {
			delete(st.dirty, id)
			continue
		}
		if err := b.repo.Put(ctx, st.scope, r); err != nil {
			b.log.Error(fmt.Sprintf("Failed to save reminder %s of scope %s, will retry", id, st.scope), err)
			continue
		}
		delete(st.dirty, id)
	}
	return len(st.removed) + len(st.dirty)
}

// Reconcile flushes every loaded scope with pending writes and returns the
// number of writes still pending.
func (b *ReminderBook) Reconcile(ctx context.Context) int {
	b.mu.Lock()
	states := make([]*scopeState, 0, len(b.scopes))
	for _, st := range b.scopes {
		states = append(states, st)
	}
	b.mu.Unlock()

	pending := 0
	for _, st := range states {
		st.mu.Lock()
		if st.loaded && st.hasPending() {
			pending += b.Flush(ctx, st)
		}
		st.mu.Unlock()
	}
	return pending
}

// Pending counts unflushed writes across all scopes.
func (b *ReminderBook) Pending() int {
	b.mu.Lock()
	states := make([]*scopeState, 0, len(b.scopes))
	for _, st := range b.scopes {
		states = append(states, st)
	}
	b.mu.Unlock()

	n := 0
	for _, st := range states {
		st.mu.Lock()
		n += len(st.dirty) + len(st.removed)
		st.mu.Unlock()
	}
	return n
}

func (st *scopeState) hasPending() bool {
	return len(st.dirty) > 0 || len(st.removed) > 0
}

// list returns the scope's reminders in list order.
func (st *scopeState) list() []*entity.Reminder {
	out := make([]*entity.Reminder, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.records[id])
	}
	return out
}

func (st *scopeState) get(id string) (*entity.Reminder, bool) {
	r, ok := st.records[id]
	return r, ok
}

// at returns the reminder at a 1-based list index.
func (st *scopeState) at(index int) (*entity.Reminder, error) {
	if index < 1 || index > len(st.order) {
		return nil, fmt.Errorf("%w: %d (have %d)", appErrors.ErrIndexOutOfRange, index, len(st.order))
	}
	return st.records[st.order[index-1]], nil
}

// indexOf returns the 1-based list index of id, or 0.
func (st *scopeState) indexOf(id string) int {
	for i, v := range st.order {
		if v == id {
			return i + 1
		}
	}
	return 0
}

// insert appends r, giving it the next position and an id unique in the scope.
func (st *scopeState) insert(r *entity.Reminder) {
	created := r.CreatedAt
	for {
		if _, taken := st.records[r.ID]; !taken {
			break
		}
		created = created.Add(time.Nanosecond)
		r.ID = entity.NewReminderID(r.OwnerID, created)
	}
	r.Scope = st.scope
	r.Position = st.nextPos
	st.nextPos++
	st.order = append(st.order, r.ID)
	st.records[r.ID] = r
	delete(st.removed, r.ID)
	st.dirty[r.ID] = struct{}{}
}

// update replaces the stored value of an existing reminder.
func (st *scopeState) update(r *entity.Reminder) {
	if _, ok := st.records[r.ID]; !ok {
		return
	}
	r.Scope = st.scope
	st.records[r.ID] = r
	st.dirty[r.ID] = struct{}{}
}

// remove drops a reminder; the store delete happens on the next flush.
func (st *scopeState) remove(id string) {
	if _, ok := st.records[id]; !ok {
		return
	}
	delete(st.records, id)
	for i, v := range st.order {
		if v == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	delete(st.dirty, id)
	st.removed[id] = struct{}{}
}
