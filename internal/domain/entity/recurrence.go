package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	appErrors "remindbot/internal/pkg/errors"
)

// Recurrence is the rule a reminder follows after it fires.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var recurrenceWords = map[string]Recurrence{
	"none": RecurrenceNone, "once": RecurrenceNone, "不重复": RecurrenceNone, "一次": RecurrenceNone,
	"daily": RecurrenceDaily, "everyday": RecurrenceDaily, "every day": RecurrenceDaily, "每天": RecurrenceDaily, "每日": RecurrenceDaily,
	"weekly": RecurrenceWeekly, "every week": RecurrenceWeekly, "每周": RecurrenceWeekly, "每星期": RecurrenceWeekly, "每个星期": RecurrenceWeekly,
	"monthly": RecurrenceMonthly, "every month": RecurrenceMonthly, "每月": RecurrenceMonthly, "每个月": RecurrenceMonthly,
}

// ParseRecurrence parses a recurrence word in either locale. An empty string
// means RecurrenceNone.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return RecurrenceNone, nil
	}
	if r, ok := recurrenceWords[s]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", appErrors.ErrUnknownRecurrence, s)
}

// IsRecurrenceWord reports whether s names a recurrence.
func IsRecurrenceWord(s string) bool {
	_, err := ParseRecurrence(s)
	return err == nil && strings.TrimSpace(s) != ""
}

// Valid reports whether r is one of the known values.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// OrNone maps the zero value (and anything unknown) to RecurrenceNone.
func (r Recurrence) OrNone() Recurrence {
	if r.Valid() {
		return r
	}
	return RecurrenceNone
}

// Label renders r for users of the given locale ("zh" or "en").
func (r Recurrence) Label(locale string) string {
	if locale == "en" {
		switch r.OrNone() {
		case RecurrenceDaily:
			return "daily"
		case RecurrenceWeekly:
			return "weekly"
		case RecurrenceMonthly:
			return "monthly"
		}
		return "once"
	}
	switch r.OrNone() {
	case RecurrenceDaily:
		return "每天"
	case RecurrenceWeekly:
		return "每周"
	case RecurrenceMonthly:
		return "每月"
	}
	return "不重复"
}

// Next returns the occurrence after at. Daily and weekly add exact 24h / 7·24h
// steps. Monthly keeps the clock time and lands on anchorDay in the following
// month, clamped to that month's last day. One-shot reminders have no next.
func (r Recurrence) Next(at time.Time, anchorDay int) (time.Time, bool) {
	switch r {
	case RecurrenceDaily:
		return at.Add(day), true
	case RecurrenceWeekly:
		return at.Add(week), true
	case RecurrenceMonthly:
		return nextMonth(at, anchorDay), true
	}
	return time.Time{}, false
}

// NextAfter returns the first occurrence after at that is strictly after now.
func (r Recurrence) NextAfter(at time.Time, anchorDay int, now time.Time) (time.Time, bool) {
	next, ok := r.Next(at, anchorDay)
	if !ok || next.After(now) {
		return next, ok
	}
	switch r {
	case RecurrenceDaily, RecurrenceWeekly:
		step := day
		if r == RecurrenceWeekly {
			step = week
		}
		n := now.Sub(at)/step + 1
		next = at.Add(n * step)
		for !next.After(now) {
			next = next.Add(step)
		}
		return next, true
	}
	for !next.After(now) {
		next = nextMonth(next, anchorDay)
	}
	return next, true
}

func nextMonth(at time.Time, anchorDay int) time.Time {
	if anchorDay < 1 || anchorDay > 31 {
		anchorDay = at.Day()
	}
	y, m, _ := at.Date()
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, at.Location())
	d := anchorDay
	if last := daysIn(first.Year(), first.Month(), at.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, at.Hour(), at.Minute(), at.Second(), at.Nanosecond(), at.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

type recurrenceMarker struct {
	re  *regexp.Regexp
	rec Recurrence
	// keep is the submatch index that survives in the expression, 0 for none.
	keep int
}

var recurrenceMarkers = []recurrenceMarker{
	{regexp.MustCompile(`每个?(?:周|星期|礼拜)([一二三四五六日天1-7])`), RecurrenceWeekly, 1},
	{regexp.MustCompile(`每个?(?:周|星期|礼拜)`), RecurrenceWeekly, 0},
	{regexp.MustCompile(`每个?月`), RecurrenceMonthly, 0},
	{regexp.MustCompile(`每天|每日`), RecurrenceDaily, 0},
	{regexp.MustCompile(`(?i)\bevery\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), RecurrenceWeekly, 1},
	{regexp.MustCompile(`(?i)\b(?:every\s+week|weekly)\b`), RecurrenceWeekly, 0},
	{regexp.MustCompile(`(?i)\b(?:every\s+month|monthly)\b`), RecurrenceMonthly, 0},
	{regexp.MustCompile(`(?i)\b(?:every\s*day|daily)\b`), RecurrenceDaily, 0},
}

// DetectRecurrence finds a recurrence word embedded in a time expression such
// as "每天晚上8点" or "every monday 9am" and returns the expression with the
// word removed. A weekday attached to a weekly marker stays in the expression.
func DetectRecurrence(expr string) (Recurrence, string, bool) {
	for _, m := range recurrenceMarkers {
		loc := m.re.FindStringSubmatchIndex(expr)
		if loc == nil {
			continue
		}
		repl := ""
		if m.keep > 0 && loc[2*m.keep] >= 0 {
			repl = expr[loc[2*m.keep]:loc[2*m.keep+1]]
			if m.rec == RecurrenceWeekly && !isASCII(repl) {
				repl = "星期" + repl
			}
		}
		rest := expr[:loc[0]] + " " + repl + " " + expr[loc[1]:]
		return m.rec, strings.Join(strings.Fields(rest), " "), true
	}
	return RecurrenceNone, expr, false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
