package entity

import (
	"errors"
	"testing"
	"time"

	appErrors "remindbot/internal/pkg/errors"
)

var cst = time.FixedZone("CST", 8*3600)

func TestRecurrenceNext(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 1, 31, 9, 30, 0, 0, cst)
	tests := []struct {
		name   string
		rec    Recurrence
		at     time.Time
		anchor int
		want   time.Time
		ok     bool
	}{
		{name: "none", rec: RecurrenceNone, at: at, ok: false},
		{name: "daily", rec: RecurrenceDaily, at: at, want: at.Add(24 * time.Hour), ok: true},
		{name: "weekly", rec: RecurrenceWeekly, at: at, want: at.Add(7 * 24 * time.Hour), ok: true},
		{name: "monthly clamps to february end", rec: RecurrenceMonthly, at: at, anchor: 31,
			want: time.Date(2026, 2, 28, 9, 30, 0, 0, cst), ok: true},
		{name: "monthly returns to anchor after clamp", rec: RecurrenceMonthly,
			at: time.Date(2026, 2, 28, 9, 30, 0, 0, cst), anchor: 31,
			want: time.Date(2026, 3, 31, 9, 30, 0, 0, cst), ok: true},
		{name: "monthly leap year", rec: RecurrenceMonthly,
			at: time.Date(2028, 1, 30, 8, 0, 0, 0, cst), anchor: 30,
			want: time.Date(2028, 2, 29, 8, 0, 0, 0, cst), ok: true},
		{name: "monthly december rolls year", rec: RecurrenceMonthly,
			at: time.Date(2026, 12, 15, 8, 0, 0, 0, cst), anchor: 15,
			want: time.Date(2027, 1, 15, 8, 0, 0, 0, cst), ok: true},
		{name: "monthly without anchor uses day of at", rec: RecurrenceMonthly,
			at: time.Date(2026, 4, 30, 8, 0, 0, 0, cst),
			want: time.Date(2026, 5, 30, 8, 0, 0, 0, cst), ok: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.rec.Next(tt.at, tt.anchor)
			if ok != tt.ok {
				t.Fatalf("Next ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("Next = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecurrenceNextAfter(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, cst)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, cst)

	got, ok := RecurrenceDaily.NextAfter(at, 0, now)
	if !ok || !got.Equal(time.Date(2026, 3, 11, 8, 0, 0, 0, cst)) {
		t.Fatalf("daily NextAfter = %v, %v", got, ok)
	}
	got, ok = RecurrenceWeekly.NextAfter(at, 0, now)
	if !ok || !got.Equal(time.Date(2026, 3, 15, 8, 0, 0, 0, cst)) {
		t.Fatalf("weekly NextAfter = %v, %v", got, ok)
	}
	got, ok = RecurrenceMonthly.NextAfter(at, 1, now.AddDate(0, 2, 0))
	if !ok || !got.Equal(time.Date(2026, 6, 1, 8, 0, 0, 0, cst)) {
		t.Fatalf("monthly NextAfter = %v, %v", got, ok)
	}
	if _, ok := RecurrenceNone.NextAfter(at, 0, now); ok {
		t.Fatal("one-shot must not have a next occurrence")
	}
}

func TestParseRecurrence(t *testing.T) {
	t.Parallel()
	tests := map[string]Recurrence{
		"":          RecurrenceNone,
		"不重复":       RecurrenceNone,
		"每天":        RecurrenceDaily,
		"Daily":     RecurrenceDaily,
		"every  day": RecurrenceDaily,
		"每周":        RecurrenceWeekly,
		"weekly":    RecurrenceWeekly,
		"每月":        RecurrenceMonthly,
		"monthly":   RecurrenceMonthly,
	}
	for in, want := range tests {
		got, err := ParseRecurrence(in)
		if err != nil {
			t.Fatalf("ParseRecurrence(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseRecurrence(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseRecurrence("fortnightly"); !errors.Is(err, appErrors.ErrUnknownRecurrence) {
		t.Fatalf("expected ErrUnknownRecurrence, got %v", err)
	}
}

func TestDetectRecurrence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		rec  Recurrence
		rest string
		ok   bool
	}{
		{in: "每天晚上8点", rec: RecurrenceDaily, rest: "晚上8点", ok: true},
		{in: "每周一 9点", rec: RecurrenceWeekly, rest: "星期一 9点", ok: true},
		{in: "每月 15号 9点", rec: RecurrenceMonthly, rest: "15号 9点", ok: true},
		{in: "every day at 8pm", rec: RecurrenceDaily, rest: "at 8pm", ok: true},
		{in: "every Monday 9am", rec: RecurrenceWeekly, rest: "Monday 9am", ok: true},
		{in: "tomorrow 9am", rec: RecurrenceNone, rest: "tomorrow 9am", ok: false},
	}
	for _, tt := range tests {
		rec, rest, ok := DetectRecurrence(tt.in)
		if rec != tt.rec || rest != tt.rest || ok != tt.ok {
			t.Fatalf("DetectRecurrence(%q) = %q, %q, %v; want %q, %q, %v", tt.in, rec, rest, ok, tt.rec, tt.rest, tt.ok)
		}
	}
}

func TestReminderAnchor(t *testing.T) {
	t.Parallel()
	r := &Reminder{FireAt: time.Date(2026, 5, 31, 7, 0, 0, 0, cst), Recurrence: RecurrenceMonthly}
	if r.Anchor() != 31 {
		t.Fatalf("Anchor = %d, want 31", r.Anchor())
	}
	next, ok := r.NextFire()
	if !ok || !next.Equal(time.Date(2026, 6, 30, 7, 0, 0, 0, cst)) {
		t.Fatalf("NextFire = %v, %v", next, ok)
	}
	r.FireAt, r.AnchorDay = next, 31
	next, _ = r.NextFire()
	if !next.Equal(time.Date(2026, 7, 31, 7, 0, 0, 0, cst)) {
		t.Fatalf("NextFire after clamp = %v, want July 31", next)
	}
}
