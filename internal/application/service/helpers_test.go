package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/gateway"
	"remindbot/internal/infrastructure/scheduler"
	"remindbot/internal/pkg/logger"
	"remindbot/internal/pkg/timeparser"
)

var errWrite = errors.New("disk full")

// memRepo is an in-memory ReminderRepository. failWrites makes Put and Delete fail.
type memRepo struct {
	mu         sync.Mutex
	data       map[string]map[string]*entity.Reminder
	failWrites atomic.Bool
	puts       atomic.Int64
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string]map[string]*entity.Reminder)}
}

func (m *memRepo) Load(ctx context.Context, scope string) ([]*entity.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Reminder, 0, len(m.data[scope]))
	for _, r := range m.data[scope] {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memRepo) Put(ctx context.Context, scope string, r *entity.Reminder) error {
	if m.failWrites.Load() {
		return errWrite
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[scope] == nil {
		m.data[scope] = make(map[string]*entity.Reminder)
	}
	m.data[scope][r.ID] = r.Clone()
	m.puts.Add(1)
	return nil
}

func (m *memRepo) Delete(ctx context.Context, scope, id string) error {
	if m.failWrites.Load() {
		return errWrite
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[scope], id)
	if len(m.data[scope]) == 0 {
		delete(m.data, scope)
	}
	return nil
}

func (m *memRepo) Scopes(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for s := range m.data {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRepo) Close() error { return nil }

func (m *memRepo) stored(scope string) []*entity.Reminder {
	rs, _ := m.Load(context.Background(), scope)
	return rs
}

// recorder is a DeliveryGateway that counts sends and fails the first
// failFirst attempts (every attempt when failFirst < 0).
type recorder struct {
	mu        sync.Mutex
	sent      []string
	attempts  int
	failFirst int
}

func (g *recorder) Send(ctx context.Context, tt entity.TargetType, to, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts++
	if g.failFirst < 0 || g.attempts <= g.failFirst {
		return errors.New("push rejected")
	}
	g.sent = append(g.sent, to+": "+content)
	return nil
}

func (g *recorder) snapshot() (attempts int, sent []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts, append([]string(nil), g.sent...)
}

type testEnv struct {
	repo      *memRepo
	book      *ReminderBook
	gw        *recorder
	scheduler SchedulerService
	reminders ReminderService
}

func newTestEnv(t *testing.T, repo *memRepo, cfg SchedulerConfig) *testEnv {
	t.Helper()
	if repo == nil {
		repo = newMemRepo()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = RetryPolicy{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond}
	}
	log := logger.Nop()
	gw := &recorder{}
	book := NewReminderBook(repo, time.UTC, log)
	cron := scheduler.NewScheduler(log, time.UTC)
	sched := NewSchedulerService(cron, book, gw, cfg, log)
	t.Cleanup(sched.Stop)
	return &testEnv{
		repo:      repo,
		book:      book,
		gw:        gw,
		scheduler: sched,
		reminders: NewReminderService(book, sched, timeparser.New(time.UTC), cfg.Now, log),
	}
}

var _ gateway.DeliveryGateway = (*recorder)(nil)

// seed stores r in the repository before the services ever see the scope.
func seed(t *testing.T, repo *memRepo, rs ...*entity.Reminder) {
	t.Helper()
	for i, r := range rs {
		if r.Position == 0 {
			r.Position = int64(i)
		}
		if err := repo.Put(context.Background(), r.Scope, r); err != nil {
			t.Fatal(err)
		}
	}
}

// armAt inserts a reminder firing at at and schedules it.
func (e *testEnv) armAt(t *testing.T, scope string, at time.Time, rec entity.Recurrence) *entity.Reminder {
	t.Helper()
	ctx := context.Background()
	st, unlock, err := e.book.Lock(ctx, scope)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()
	r := &entity.Reminder{
		ID:          entity.NewReminderID(scope, time.Now()),
		OwnerID:     scope,
		Destination: entity.Destination{TargetID: scope, TargetType: entity.TargetDirect},
		Content:     "stretch",
		FireAt:      at,
		Recurrence:  rec,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	st.insert(r)
	e.book.Flush(ctx, st)
	if err := e.scheduler.ScheduleReminder(ctx, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
