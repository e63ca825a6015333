package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"remindbot/internal/application/dto"
	"remindbot/internal/domain/entity"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
	"remindbot/internal/pkg/timeparser"
)

type reminderService struct {
	book         *ReminderBook
	schedulerSvc SchedulerService // Use the interface
	parser       *timeparser.Parser
	now          func() time.Time
	log          logger.Logger
}

// NewReminderService creates a new instance of ReminderService implementation.
// now defaults to time.Now.
func NewReminderService(
	book *ReminderBook,
	schedulerSvc SchedulerService,
	parser *timeparser.Parser,
	now func() time.Time,
	log logger.Logger,
) ReminderService {
	if now == nil {
		now = time.Now
	}
	return &reminderService{
		book:         book,
		schedulerSvc: schedulerSvc,
		parser:       parser,
		now:          now,
		log:          log,
	}
}

// CreateReminder creates a new reminder and schedules it.
func (s *reminderService) CreateReminder(ctx context.Context, req dto.CreateReminderRequest) (dto.ReminderResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return dto.ReminderResponse{}, appErrors.ErrEmptyContent
	}
	rec, err := entity.ParseRecurrence(req.Recurrence)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	expr := strings.TrimSpace(req.TimeExpression)
	if detected, rest, ok := entity.DetectRecurrence(expr); ok {
		expr = rest
		if rec == entity.RecurrenceNone {
			rec = detected
		}
	}

	now := s.now()
	match, err := s.parser.Parse(expr, now)
	if err != nil {
		s.log.Debug(fmt.Sprintf("Rejected time expression %q for scope %s: %v", req.TimeExpression, req.Scope, err))
		return dto.ReminderResponse{}, err
	}

	owner := req.OwnerID
	if owner == "" {
		owner = req.Scope
	}
	dest := entity.Destination{TargetID: req.TargetID, TargetType: req.TargetType}
	if dest.TargetID == "" {
		dest.TargetID = owner
	}
	if dest.TargetType == "" {
		dest.TargetType = entity.TargetDirect
	}
	reminder := &entity.Reminder{
		ID:          entity.NewReminderID(owner, now),
		OwnerID:     owner,
		Destination: dest,
		Content:     content,
		FireAt:      match.At,
		Recurrence:  rec,
		Active:      true,
		CreatedAt:   now,
	}
	if rec == entity.RecurrenceMonthly {
		reminder.AnchorDay = match.At.Day()
	}

	st, unlock, err := s.book.Lock(ctx, req.Scope)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	defer unlock()

	st.insert(reminder)
	if err := s.schedulerSvc.ScheduleReminder(ctx, reminder); err != nil {
		st.remove(reminder.ID)
		s.book.Flush(ctx, st)
		return dto.ReminderResponse{}, err
	}
	s.book.Flush(ctx, st)

	s.log.Info(fmt.Sprintf("Created reminder %s for scope %s at %v (%s, rule %s)", reminder.ID, req.Scope, match.At, rec, match.Rule))
	return dto.ToReminderResponse(st.indexOf(reminder.ID), reminder), nil
}

// ListReminders retrieves every reminder of a scope.
func (s *reminderService) ListReminders(ctx context.Context, scope string) ([]dto.ReminderResponse, error) {
	st, unlock, err := s.book.Lock(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return dto.ToReminderResponseList(st.list()), nil
}

// GetReminder retrieves a reminder by its index.
func (s *reminderService) GetReminder(ctx context.Context, req dto.IndexRequest) (dto.ReminderResponse, error) {
	st, unlock, err := s.book.Lock(ctx, req.Scope)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	defer unlock()
	r, err := st.at(req.Index)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	return dto.ToReminderResponse(req.Index, r), nil
}

// DeleteReminder cancels and removes a reminder.
func (s *reminderService) DeleteReminder(ctx context.Context, req dto.IndexRequest) (dto.ReminderResponse, error) {
	st, unlock, err := s.book.Lock(ctx, req.Scope)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	defer unlock()

	r, err := st.at(req.Index)
	if err != nil {
		return dto.ReminderResponse{}, err
	}
	resp := dto.ToReminderResponse(req.Index, r)
	if err := s.schedulerSvc.CancelReminderSchedule(ctx, r.ID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to cancel schedule of reminder %s", r.ID), err)
	}
	st.remove(r.ID)
	s.book.Flush(ctx, st)
	s.log.Info(fmt.Sprintf("Deleted reminder %s of scope %s", r.ID, req.Scope))
	return resp, nil
}

// ToggleReminder pauses or resumes a reminder.
func (s *reminderService) ToggleReminder(ctx context.Context, req dto.ToggleReminderRequest) (dto.ToggleResult, error) {
	st, unlock, err := s.book.Lock(ctx, req.Scope)
	if err != nil {
		return dto.ToggleResult{}, err
	}
	defer unlock()

	r, err := st.at(req.Index)
	if err != nil {
		return dto.ToggleResult{}, err
	}
	if r.Active == req.Active {
		return dto.ToggleResult{Reminder: dto.ToReminderResponse(req.Index, r), Changed: false}, nil
	}

	if !req.Active {
		if err := s.schedulerSvc.CancelReminderSchedule(ctx, r.ID); err != nil {
			s.log.Error(fmt.Sprintf("Failed to cancel schedule of reminder %s", r.ID), err)
		}
		upd := r.Clone()
		upd.Active = false
		st.update(upd)
		s.book.Flush(ctx, st)
		s.log.Info(fmt.Sprintf("Paused reminder %s of scope %s", r.ID, req.Scope))
		return dto.ToggleResult{Reminder: dto.ToReminderResponse(req.Index, upd), Changed: true}, nil
	}

	upd := r.Clone()
	if now := s.now(); !upd.FireAt.After(now) {
		next, ok := r.NextFireAfter(now)
		if !ok {
			resp := dto.ToReminderResponse(req.Index, r)
			st.remove(r.ID)
			s.book.Flush(ctx, st)
			s.log.Info(fmt.Sprintf("Removed expired one-shot reminder %s of scope %s on resume", r.ID, req.Scope))
			return dto.ToggleResult{Reminder: resp, Changed: true}, fmt.Errorf("%w: %s", appErrors.ErrExpired, r.ID)
		}
		upd = r.MovedTo(next)
	}
	upd.Active = true
	if err := s.schedulerSvc.ScheduleReminder(ctx, upd); err != nil {
		return dto.ToggleResult{}, err
	}
	st.update(upd)
	s.book.Flush(ctx, st)
	s.log.Info(fmt.Sprintf("Resumed reminder %s of scope %s, next at %v", r.ID, req.Scope, upd.FireAt))
	return dto.ToggleResult{Reminder: dto.ToReminderResponse(req.Index, upd), Changed: true}, nil
}

// ClearReminders removes every reminder of a scope.
func (s *reminderService) ClearReminders(ctx context.Context, scope string) (int, error) {
	st, unlock, err := s.book.Lock(ctx, scope)
	if err != nil {
		return 0, err
	}
	defer unlock()

	reminders := st.list()
	for _, r := range reminders {
		if err := s.schedulerSvc.CancelReminderSchedule(ctx, r.ID); err != nil {
			s.log.Error(fmt.Sprintf("Failed to cancel schedule of reminder %s", r.ID), err)
		}
		st.remove(r.ID)
	}
	s.book.Flush(ctx, st)
	s.log.Info(fmt.Sprintf("Cleared %d reminders of scope %s", len(reminders), scope))
	return len(reminders), nil
}
