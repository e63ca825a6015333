package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindbot/internal/application/dto"
	"remindbot/internal/application/service"
	"remindbot/internal/domain/entity"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
	"remindbot/internal/pkg/timeparser"
)

type kind int

const (
	kindCreate kind = iota
	kindList
	kindDelete
	kindPause
	kindResume
	kindClear
	kindHelp
)

type keyword struct {
	text   string
	locale string
	kind   kind
	exact  bool // the whole message must be the keyword
}

var keywords = []keyword{
	{"提醒我", "zh", kindCreate, false},
	{"查看提醒", "zh", kindList, true},
	{"提醒列表", "zh", kindList, true},
	{"我的提醒", "zh", kindList, true},
	{"删除提醒", "zh", kindDelete, false},
	{"暂停提醒", "zh", kindPause, false},
	{"恢复提醒", "zh", kindResume, false},
	{"清空提醒", "zh", kindClear, true},
	{"清除所有提醒", "zh", kindClear, true},
	{"提醒帮助", "zh", kindHelp, true},
	{"定时提醒帮助", "zh", kindHelp, true},
	{"remind me", "en", kindCreate, false},
	{"list reminders", "en", kindList, true},
	{"delete reminder", "en", kindDelete, false},
	{"pause reminder", "en", kindPause, false},
	{"resume reminder", "en", kindResume, false},
	{"clear all reminders", "en", kindClear, true},
	{"help", "en", kindHelp, true},
}

// Message is one incoming chat text and where it came from.
type Message struct {
	Scope      string // always the sender's user id
	OwnerID    string
	TargetID   string // where reminders created by this message are delivered
	TargetType entity.TargetType
	Text       string
}

// Handler turns chat text into reminder operations and renders the reply in
// the language of the keyword used.
type Handler struct {
	reminders service.ReminderService
	parser    *timeparser.Parser
	now       func() time.Time
	log       logger.Logger
}

// NewHandler creates a command Handler. now defaults to time.Now.
func NewHandler(reminders service.ReminderService, parser *timeparser.Parser, now func() time.Time, log logger.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		reminders: reminders,
		parser:    parser,
		now:       now,
		log:       log,
	}
}

// match finds the command keyword of text and returns the remaining arguments.
func match(text string) (keyword, string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw.exact {
			if lower == kw.text {
				return kw, "", true
			}
			continue
		}
		if !strings.HasPrefix(lower, kw.text) {
			continue
		}
		rest := text[len(kw.text):]
		// english keywords must end at a word boundary
		if kw.locale == "en" && rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return kw, strings.TrimSpace(rest), true
	}
	return keyword{}, "", false
}

// Handle runs the command in msg.Text. It reports false when the text is not
// a command; such messages get no reply.
func (h *Handler) Handle(ctx context.Context, msg Message) (string, bool) {
	text := strings.Join(strings.Fields(msg.Text), " ")
	kw, args, ok := match(text)
	if !ok {
		return "", false
	}
	c := catalogFor(kw.locale)
	h.log.Debug(fmt.Sprintf("Command %q from scope %s (locale %s)", kw.text, msg.Scope, kw.locale))

	switch kw.kind {
	case kindCreate:
		return h.create(ctx, c, kw.locale, msg, args), true
	case kindList:
		list, err := h.reminders.ListReminders(ctx, msg.Scope)
		if err != nil {
			h.log.Error(fmt.Sprintf("Failed to list reminders of scope %s", msg.Scope), err)
			return c.listFailed, true
		}
		return FormatList(kw.locale, list, h.parser.Location()), true
	case kindDelete:
		return h.delete(ctx, c, msg, args), true
	case kindPause:
		return h.toggle(ctx, c, msg, args, false), true
	case kindResume:
		return h.toggle(ctx, c, msg, args, true), true
	case kindClear:
		n, err := h.reminders.ClearReminders(ctx, msg.Scope)
		if err != nil {
			h.log.Error(fmt.Sprintf("Failed to clear reminders of scope %s", msg.Scope), err)
			return c.clearFailed, true
		}
		if n == 0 {
			return c.listEmpty, true
		}
		return fmt.Sprintf(c.cleared, n), true
	default:
		return c.help, true
	}
}

func (h *Handler) create(ctx context.Context, c *catalog, locale string, msg Message, args string) string {
	parts, err := splitCreate(h.parser, args, h.now())
	if err != nil {
		return createError(c, err)
	}
	resp, err := h.reminders.CreateReminder(ctx, dto.CreateReminderRequest{
		Scope:          msg.Scope,
		OwnerID:        msg.OwnerID,
		TargetID:       msg.TargetID,
		TargetType:     msg.TargetType,
		TimeExpression: parts.Expr,
		Content:        parts.Content,
		Recurrence:     parts.Recurrence,
	})
	if err != nil {
		if isUserError(err) {
			return createError(c, err)
		}
		h.log.Error(fmt.Sprintf("Failed to create reminder for scope %s", msg.Scope), err)
		return c.createFailed
	}
	return formatCreated(c, locale, resp, h.parser.Location())
}

func isUserError(err error) bool {
	for _, target := range []error{appErrors.ErrParseFailure, appErrors.ErrPastTime, appErrors.ErrEmptyContent, appErrors.ErrUnknownRecurrence} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func createError(c *catalog, err error) string {
	switch {
	case errors.Is(err, errUsage):
		return c.usageCreate
	case errors.Is(err, appErrors.ErrPastTime):
		return c.pastTime
	case errors.Is(err, appErrors.ErrEmptyContent):
		return c.emptyContent
	case errors.Is(err, appErrors.ErrUnknownRecurrence):
		return c.usageCreate
	case errors.Is(err, appErrors.ErrParseFailure):
		return c.parseFailure
	}
	return c.createFailed
}

// parseIndex reads the 1-based index argument, or returns the reply to send.
func parseIndex(c *catalog, args, verb, cmd string) (int, string, bool) {
	if args == "" {
		return 0, fmt.Sprintf(c.indexMissing, verb, cmd), false
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return 0, c.indexInvalid, false
	}
	return n, "", true
}

func (h *Handler) delete(ctx context.Context, c *catalog, msg Message, args string) string {
	idx, reply, ok := parseIndex(c, args, c.deleteVerb, c.deleteCmd)
	if !ok {
		return reply
	}
	resp, err := h.reminders.DeleteReminder(ctx, dto.IndexRequest{Scope: msg.Scope, Index: idx})
	if err != nil {
		if errors.Is(err, appErrors.ErrIndexOutOfRange) {
			return c.indexNotFound
		}
		h.log.Error(fmt.Sprintf("Failed to delete reminder %d of scope %s", idx, msg.Scope), err)
		return c.deleteFailed
	}
	return fmt.Sprintf(c.deleted, resp.Content)
}

func (h *Handler) toggle(ctx context.Context, c *catalog, msg Message, args string, active bool) string {
	verb, cmd := c.pauseVerb, c.pauseCmd
	if active {
		verb, cmd = c.resumeVerb, c.resumeCmd
	}
	idx, reply, ok := parseIndex(c, args, verb, cmd)
	if !ok {
		return reply
	}
	res, err := h.reminders.ToggleReminder(ctx, dto.ToggleReminderRequest{Scope: msg.Scope, Index: idx, Active: active})
	switch {
	case errors.Is(err, appErrors.ErrIndexOutOfRange):
		return c.indexNotFound
	case errors.Is(err, appErrors.ErrExpired):
		return fmt.Sprintf(c.expired, res.Reminder.Content)
	case err != nil:
		h.log.Error(fmt.Sprintf("Failed to toggle reminder %d of scope %s to active=%t", idx, msg.Scope, active), err)
		return fmt.Sprintf(c.toggleFailed, verb)
	}
	if !res.Changed {
		if active {
			return c.alreadyActive
		}
		return c.alreadyPaused
	}
	if active {
		return fmt.Sprintf(c.resumed, res.Reminder.Content)
	}
	return fmt.Sprintf(c.paused, res.Reminder.Content)
}
