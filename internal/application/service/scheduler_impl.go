package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"remindbot/internal/application/dto"
	"remindbot/internal/domain/constant"
	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/gateway"
	"remindbot/internal/infrastructure/scheduler"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
)

// SchedulerConfig tunes the scheduler service.
type SchedulerConfig struct {
	Retry             RetryPolicy
	Recovery          constant.RecoveryPolicy
	ReconcileInterval time.Duration
	Locale            string
	Now               func() time.Time // defaults to time.Now
}

// handle is a live timer. entryID is zero for catch-up firings that run
// without a cron entry.
type handle struct {
	scope   string
	entryID cron.EntryID
	gen     uint64
}

type schedulerService struct {
	cronScheduler *scheduler.Scheduler // The infrastructure scheduler
	book          *ReminderBook
	gateway       gateway.DeliveryGateway
	cfg           SchedulerConfig
	log           logger.Logger

	// Live timers keyed by reminder id. Lock order: scope lock, then mu.
	mu      sync.Mutex
	handles map[string]handle
	gen     uint64

	reconcileOnce sync.Once
	stopOnce      sync.Once
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	fired     atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewSchedulerService creates a new instance of SchedulerService implementation.
func NewSchedulerService(
	cronScheduler *scheduler.Scheduler,
	book *ReminderBook,
	gw gateway.DeliveryGateway,
	cfg SchedulerConfig,
	log logger.Logger,
) SchedulerService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Recovery == "" {
		cfg.Recovery = constant.RecoverySkip
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &schedulerService{
		cronScheduler: cronScheduler,
		book:          book,
		gateway:       gw,
		cfg:           cfg,
		log:           log,
		handles:       make(map[string]handle),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// ScheduleReminder schedules a job to notify the destination at the reminder time.
func (s *schedulerService) ScheduleReminder(ctx context.Context, reminder *entity.Reminder) error {
	if reminder.FireAt.IsZero() || !reminder.FireAt.After(s.cfg.Now()) {
		s.log.Warn(fmt.Sprintf("Attempted to schedule reminder %s with invalid or past time: %v", reminder.ID, reminder.FireAt))
		return fmt.Errorf("%w: cannot schedule reminder with past or zero time", appErrors.ErrScheduling)
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("%w: scheduler stopped", appErrors.ErrScheduling)
	}

	scope, id := reminder.Scope, reminder.ID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(id)
	s.gen++
	gen := s.gen
	entryID := s.cronScheduler.AddOnce(reminder.FireAt, func() {
		s.fire(scope, id, gen)
	})
	s.handles[id] = handle{scope: scope, entryID: entryID, gen: gen}
	s.log.Info(fmt.Sprintf("Scheduled notification for reminder %s at %v (Job ID: %d)", id, reminder.FireAt, entryID))
	return nil
}

// fireNow runs a firing right away without a cron entry (catch-up at startup).
func (s *schedulerService) fireNow(scope, id string) {
	s.mu.Lock()
	s.dropLocked(id)
	s.gen++
	gen := s.gen
	s.handles[id] = handle{scope: scope, gen: gen}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.fire(scope, id, gen)
	}()
}

// CancelReminderSchedule cancels the notification job for a specific reminder.
func (s *schedulerService) CancelReminderSchedule(ctx context.Context, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropLocked(reminderID) {
		s.log.Info(fmt.Sprintf("Cancelled notification schedule for reminder %s", reminderID))
	} else {
		s.log.Debug(fmt.Sprintf("No active notification schedule found for reminder %s to cancel.", reminderID))
	}
	return nil
}

// IsScheduled reports whether a live timer exists for the id.
func (s *schedulerService) IsScheduled(reminderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[reminderID]
	return ok
}

// dropLocked removes the handle of id and its cron entry. s.mu must be held.
func (s *schedulerService) dropLocked(id string) bool {
	h, ok := s.handles[id]
	if !ok {
		return false
	}
	delete(s.handles, id)
	if h.entryID != 0 {
		s.cronScheduler.RemoveJob(h.entryID)
	}
	return true
}

// takeHandle claims the firing of id if gen is still the live generation.
func (s *schedulerService) takeHandle(id string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	if !ok || h.gen != gen {
		return false
	}
	return s.dropLocked(id)
}

// fire delivers a reminder and then moves it along its recurrence. Delivery
// runs outside the scope lock; the outcome never blocks the recurrence step.
func (s *schedulerService) fire(scope, id string, gen uint64) {
	ctx := s.ctx
	if ctx.Err() != nil {
		return
	}

	st, unlock, err := s.book.Lock(ctx, scope)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to lock scope %s to fire reminder %s", scope, id), err)
		return
	}
	if !s.takeHandle(id, gen) {
		unlock()
		s.log.Debug(fmt.Sprintf("Timer of reminder %s was replaced or cancelled, skipping", id))
		return
	}
	r, ok := st.get(id)
	if !ok || !r.Active {
		unlock()
		return
	}
	snap := r.Clone()
	unlock()

	s.fired.Add(1)
	s.log.Info(fmt.Sprintf("Executing notification job for reminder %s", id))
	attempts, err := s.cfg.Retry.Deliver(ctx, s.gateway, snap, RenderReminder(s.cfg.Locale, snap.Content))
	if ctx.Err() != nil {
		s.log.Warn(fmt.Sprintf("Delivery of reminder %s aborted by shutdown", id))
		return
	}
	if err != nil {
		s.failed.Add(1)
		s.log.Error(fmt.Sprintf("Error handling notification for reminder %s", id), err)
	} else {
		s.delivered.Add(1)
		s.log.Info(fmt.Sprintf("Successfully pushed reminder %s to %s %s (attempts: %d)", id, snap.Destination.TargetType, snap.Destination.TargetID, attempts))
	}

	s.advance(ctx, snap)
}

// advance applies the recurrence after a firing of snap.
func (s *schedulerService) advance(ctx context.Context, snap *entity.Reminder) {
	st, unlock, err := s.book.Lock(ctx, snap.Scope)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to lock scope %s after firing reminder %s", snap.Scope, snap.ID), err)
		return
	}
	defer unlock()

	cur, ok := st.get(snap.ID)
	if !ok {
		s.log.Debug(fmt.Sprintf("Reminder %s was deleted while firing", snap.ID))
		return
	}
	if !cur.FireAt.Equal(snap.FireAt) {
		s.log.Debug(fmt.Sprintf("Reminder %s was rescheduled while firing", snap.ID))
		return
	}

	next, ok := cur.NextFire()
	if !ok {
		st.remove(cur.ID)
		s.book.Flush(ctx, st)
		s.log.Info(fmt.Sprintf("Retired one-shot reminder %s", cur.ID))
		return
	}
	if now := s.cfg.Now(); !next.After(now) {
		next, _ = cur.NextFireAfter(now)
	}
	upd := cur.MovedTo(next)
	st.update(upd)
	s.book.Flush(ctx, st)

	if upd.Active {
		if err := s.ScheduleReminder(ctx, upd); err != nil {
			s.log.Error(fmt.Sprintf("Failed to re-arm reminder %s", upd.ID), err)
		}
	}
}

// Reconcile retries pending store writes.
func (s *schedulerService) Reconcile(ctx context.Context) {
	if pending := s.book.Reconcile(ctx); pending > 0 {
		s.log.Warn(fmt.Sprintf("%d reminder writes still pending after reconcile", pending))
	}
}

// startReconciler registers the periodic reconcile job once.
func (s *schedulerService) startReconciler() {
	if s.cfg.ReconcileInterval <= 0 {
		return
	}
	s.reconcileOnce.Do(func() {
		spec := "@every " + s.cfg.ReconcileInterval.String()
		if _, err := s.cronScheduler.AddJob(spec, func() { s.Reconcile(s.ctx) }); err != nil {
			s.log.Error("Failed to register reconcile job", err)
		}
	})
}

// Stats returns delivery counters.
func (s *schedulerService) Stats() dto.SchedulerStats {
	s.mu.Lock()
	live := len(s.handles)
	s.mu.Unlock()
	return dto.SchedulerStats{
		Fired:     s.fired.Load(),
		Delivered: s.delivered.Load(),
		Failed:    s.failed.Load(),
		Live:      live,
		Pending:   s.book.Pending(),
	}
}

// Stop stops the underlying scheduler.
func (s *schedulerService) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.cronScheduler.Stop()
		s.wg.Wait()
	})
}
