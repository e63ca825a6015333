package service

import (
	"context"
	"fmt"

	"remindbot/internal/application/dto"
	"remindbot/internal/domain/constant"
	"remindbot/internal/domain/entity"
)

// InitializeSchedules loads reminders from the store and schedules them on startup.
// Future active reminders are re-armed and paused ones are loaded but not
// armed. Overdue recurring reminders follow the configured recovery policy,
// while overdue one-shots are always dropped.
func (s *schedulerService) InitializeSchedules(ctx context.Context) (dto.RecoveryReport, error) {
	var report dto.RecoveryReport
	s.log.Info(fmt.Sprintf("Initializing schedules from store (recovery policy: %s)...", s.cfg.Recovery))

	scopes, err := s.book.Scopes(ctx)
	if err != nil {
		s.log.Error("Failed to retrieve scopes for initialization", err)
		return report, err
	}

	now := s.cfg.Now()
	for _, scope := range scopes {
		st, unlock, err := s.book.Lock(ctx, scope)
		if err != nil {
			// load already logged; the scope will be retried on first use
			continue
		}
		report.Scopes++

		for _, r := range st.list() {
			if !r.Active {
				report.Paused++
				continue
			}
			if r.FireAt.After(now) {
				if err := s.ScheduleReminder(ctx, r); err != nil {
					s.log.Error(fmt.Sprintf("Failed to schedule reminder %s during init", r.ID), err)
					continue
				}
				report.Scheduled++
				continue
			}

			switch s.cfg.Recovery {
			case constant.RecoveryFire:
				if r.Recurrence.OrNone() == entity.RecurrenceNone {
					st.remove(r.ID)
					report.Dropped++
					s.log.Info(fmt.Sprintf("Deleted past reminder %s during init.", r.ID))
					continue
				}
				s.fireNow(scope, r.ID)
				report.Fired++
			case constant.RecoveryDrop:
				st.remove(r.ID)
				report.Dropped++
				s.log.Info(fmt.Sprintf("Dropped overdue reminder %s during init.", r.ID))
			default:
				next, ok := r.NextFireAfter(now)
				if !ok {
					st.remove(r.ID)
					report.Dropped++
					s.log.Info(fmt.Sprintf("Deleted past reminder %s during init.", r.ID))
					continue
				}
				upd := r.MovedTo(next)
				st.update(upd)
				if err := s.ScheduleReminder(ctx, upd); err != nil {
					s.log.Error(fmt.Sprintf("Failed to schedule advanced reminder %s during init", r.ID), err)
					continue
				}
				report.Advanced++
			}
		}
		s.book.Flush(ctx, st)
		unlock()
	}

	s.startReconciler()
	s.log.Info(fmt.Sprintf("Schedule initialization complete. Scopes: %d, Scheduled: %d, Advanced: %d, Fired: %d, Dropped: %d, Paused: %d",
		report.Scopes, report.Scheduled, report.Advanced, report.Fired, report.Dropped, report.Paused))
	// Log current jobs for debugging
	s.log.Debug(fmt.Sprintf("Current cron entries: %d", len(s.cronScheduler.GetEntries())))
	return report, nil
}
