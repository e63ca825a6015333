package timeparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	appErrors "remindbot/internal/pkg/errors"
)

var cst = time.FixedZone("CST", 8*3600)

// wednesday, 2026-10-14 10:00 CST
var baseNow = time.Date(2026, 10, 14, 10, 0, 0, 0, cst)

func at(mo time.Month, d, h, m int) time.Time {
	return time.Date(2026, mo, d, h, m, 0, 0, cst)
}

func TestParse(t *testing.T) {
	t.Parallel()
	p := New(cst)
	tests := []struct {
		in   string
		want time.Time
		rule string
	}{
		// relative day
		{"明天下午3点", at(10, 15, 15, 0), RuleRelativeDay},
		{"明天下午三点半", at(10, 15, 15, 30), RuleRelativeDay},
		{"后天上午", at(10, 16, 9, 0), RuleRelativeDay},
		{"大后天晚上8点", at(10, 17, 20, 0), RuleRelativeDay},
		{"今晚", at(10, 14, 20, 0), RuleRelativeDay},
		{"明早", at(10, 15, 9, 0), RuleRelativeDay},
		{"明天", at(10, 15, 10, 0), RuleRelativeDay},
		{"明天中午", at(10, 15, 12, 0), RuleRelativeDay},
		{"明天傍晚", at(10, 15, 18, 0), RuleRelativeDay},
		{"tomorrow 9am", at(10, 15, 9, 0), RuleRelativeDay},
		{"tomorrow at 5:30pm", at(10, 15, 17, 30), RuleRelativeDay},
		{"Tomorrow evening", at(10, 15, 20, 0), RuleRelativeDay},
		{"tmr 8 am", at(10, 15, 8, 0), RuleRelativeDay},
		{"the day after tomorrow 7pm", at(10, 16, 19, 0), RuleRelativeDay},
		// weekdays
		{"下周一 9点", at(10, 26, 9, 0), RuleWeekday},
		{"下周三上午9点", at(10, 21, 9, 0), RuleWeekday},
		{"下个礼拜天下午", at(10, 25, 15, 0), RuleWeekday},
		{"next friday 5pm", at(10, 23, 17, 0), RuleWeekday},
		{"星期五 9点", at(10, 16, 9, 0), RuleWeekday},
		{"周三 9点", at(10, 21, 9, 0), RuleWeekday},
		{"周三 11点", at(10, 14, 11, 0), RuleWeekday},
		{"周二十点", at(10, 20, 10, 0), RuleWeekday},
		{"这周五晚上", at(10, 16, 20, 0), RuleWeekday},
		{"礼拜天下午3点", at(10, 18, 15, 0), RuleWeekday},
		{"monday 9am", at(10, 19, 9, 0), RuleWeekday},
		{"this saturday at 10:15", at(10, 17, 10, 15), RuleWeekday},
		{"下周 星期一 9点", at(10, 26, 9, 0), RuleWeekday},
		{"下周 周一 9点", at(10, 26, 9, 0), RuleWeekday},
		{"这周 星期五 晚上", at(10, 16, 20, 0), RuleWeekday},
		{"next week monday 9am", at(10, 26, 9, 0), RuleWeekday},
		{"this week friday 5pm", at(10, 16, 17, 0), RuleWeekday},
		// clock only
		{"下午3点", at(10, 14, 15, 0), RuleClock},
		{"8点", at(10, 15, 8, 0), RuleClock},
		{"晚上十点", at(10, 14, 22, 0), RuleClock},
		{"中午12点", at(10, 14, 12, 0), RuleClock},
		{"中午1点", at(10, 14, 13, 0), RuleClock},
		{"下午3点一刻", at(10, 14, 15, 15), RuleClock},
		{"3点三刻", at(10, 15, 3, 45), RuleClock},
		{"两点整", at(10, 15, 2, 0), RuleClock},
		{"11:45", at(10, 14, 11, 45), RuleClock},
		{"at 7pm", at(10, 14, 19, 0), RuleClock},
		{"12am", at(10, 15, 0, 0), RuleClock},
		{"9 o'clock", at(10, 15, 9, 0), RuleClock},
		// relative offsets
		{"30分钟后", baseNow.Add(30 * time.Minute), RuleManual},
		{"两小时后", baseNow.Add(2 * time.Hour), RuleManual},
		{"三天后", baseNow.Add(72 * time.Hour), RuleManual},
		{"半小时后", baseNow.Add(30 * time.Minute), RuleManual},
		{"1周后", baseNow.Add(7 * 24 * time.Hour), RuleManual},
		{"1个月后", baseNow.Add(30 * 24 * time.Hour), RuleManual},
		{"十五分钟以后", baseNow.Add(15 * time.Minute), RuleManual},
		{"45 minutes from now", baseNow.Add(45 * time.Minute), RuleManual},
		{"3 days later", baseNow.Add(72 * time.Hour), RuleManual},
		{"an hour from now", baseNow.Add(time.Hour), RuleManual},
		{"in 10 minutes", baseNow.Add(10 * time.Minute), RuleManual},
		{"in 2 hours", baseNow.Add(2 * time.Hour), RuleManual},
		{"in 3 months", baseNow.Add(90 * 24 * time.Hour), RuleManual},
		{"in 13 months", baseNow.Add(13 * 30 * 24 * time.Hour), RuleManual},
		{"in 25 months", baseNow.Add(25 * 30 * 24 * time.Hour), RuleManual},
		// explicit dates
		{"2026-10-20 08:00", at(10, 20, 8, 0), RuleManual},
		{"2026-10-20 08:00:30", time.Date(2026, 10, 20, 8, 0, 30, 0, cst), RuleManual},
		{"2026年10月20日 8点", at(10, 20, 8, 0), RuleManual},
		{"2026-11-01", at(11, 1, 9, 0), RuleManual},
		{"10月20日 8点30分", at(10, 20, 8, 30), RuleManual},
		{"3月1日 8点", time.Date(2027, 3, 1, 8, 0, 0, 0, cst), RuleManual},
		{"15号 9点", at(10, 15, 9, 0), RuleManual},
		{"14号 9点", at(11, 14, 9, 0), RuleManual},
		{"31号", time.Date(2026, 10, 31, 9, 0, 0, 0, cst), RuleManual},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			m, err := p.Parse(tt.in, baseNow)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if !m.At.Equal(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.in, m.At, tt.want)
			}
			if m.Rule != tt.rule {
				t.Fatalf("Parse(%q) rule = %s, want %s", tt.in, m.Rule, tt.rule)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	p := New(cst)
	tests := []struct {
		in   string
		want error
	}{
		{"", appErrors.ErrParseFailure},
		{"   ", appErrors.ErrParseFailure},
		{"随便什么时候", appErrors.ErrParseFailure},
		{"blah blah", appErrors.ErrParseFailure},
		{"明天 9点 准备", appErrors.ErrParseFailure},
		{"明天开会", appErrors.ErrParseFailure},
		{"8pm tell bob", appErrors.ErrParseFailure},
		{"tomorrow 9am buy milk", appErrors.ErrParseFailure},
		{"今天上午9点", appErrors.ErrPastTime},
		{"today 8am", appErrors.ErrPastTime},
		{"本周一 9点", appErrors.ErrPastTime},
		{"2020-01-01 08:00", appErrors.ErrPastTime},
	}
	for _, tt := range tests {
		_, err := p.Parse(tt.in, baseNow)
		if !errors.Is(err, tt.want) {
			t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestParseRelativeMinutes(t *testing.T) {
	t.Parallel()
	p := New(cst)
	for n := 1; n < 60; n++ {
		for _, in := range []string{
			fmt.Sprintf("%d minutes from now", n),
			fmt.Sprintf("%d分钟后", n),
		} {
			m, err := p.Parse(in, baseNow)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", in, err)
			}
			if want := baseNow.Add(time.Duration(n) * time.Minute); !m.At.Equal(want) {
				t.Fatalf("Parse(%q) = %v, want %v", in, m.At, want)
			}
		}
	}
}

func TestParseClockRollsOver(t *testing.T) {
	t.Parallel()
	p := New(cst)
	before := time.Date(2026, 10, 14, 11, 0, 0, 0, cst)
	after := time.Date(2026, 10, 14, 13, 0, 0, 0, cst)

	m, err := p.Parse("12:00", before)
	if err != nil || !m.At.Equal(at(10, 14, 12, 0)) {
		t.Fatalf("Parse before noon = %v, %v", m.At, err)
	}
	m, err = p.Parse("12:00", after)
	if err != nil || !m.At.Equal(at(10, 15, 12, 0)) {
		t.Fatalf("Parse after noon = %v, %v", m.At, err)
	}
}

func TestParseNextWeekdayIsNextWeek(t *testing.T) {
	t.Parallel()
	p := New(cst)
	names := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	for d := 0; d < 7; d++ {
		now := baseNow.AddDate(0, 0, d)
		for _, name := range names {
			m, err := p.Parse("next "+name+" 9am", now)
			if err != nil {
				t.Fatalf("next %s from %s: %v", name, now.Weekday(), err)
			}
			days := int(m.At.Sub(time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, cst)).Hours() / 24)
			if days < 7 || days > 13 {
				t.Fatalf("next %s from %s is %d days away", name, now.Weekday(), days)
			}
			if got := strings.ToLower(m.At.Weekday().String()); got != name {
				t.Fatalf("next %s landed on %s", name, got)
			}
		}
	}
}

func TestParseInLocation(t *testing.T) {
	t.Parallel()
	p := New(cst)
	m, err := p.Parse("明天上午9点", baseNow.UTC())
	if err != nil {
		t.Fatal(err)
	}
	if m.At.Location() != cst {
		t.Fatalf("result location = %v, want CST", m.At.Location())
	}
	if p.Location() != cst {
		t.Fatalf("Location() = %v", p.Location())
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"这周三":          "本周星期三",
		"下个礼拜天":        "下周星期日",
		"周五  下午":       "星期五 下午",
		"明晚八点":         "明天晚上8点",
		"今早":           "今天上午",
		"Tmr  9AM":     "tomorrow 9am",
		"两点":           "2点",
		"十二点":          "12点",
		"三点十五分":        "3点15分",
		"周二十点":         "星期二10点",
		"tonight at 9": "today evening at 9",
		"next Fri":     "next friday",
		"下周 星期一":      "下周星期一",
		"下周 周一":       "下周星期一",
		"这周 星期五":      "本周星期五",
		"next week Mon": "next monday",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCNNumber(t *testing.T) {
	t.Parallel()
	tests := map[string]int{"零": 0, "两": 2, "十": 10, "十一": 11, "二十": 20, "二十五": 25, "九十九": 99}
	for in, want := range tests {
		got, ok := cnNumber(in)
		if !ok || got != want {
			t.Fatalf("cnNumber(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "十十", "一二", "零十", "百"} {
		if _, ok := cnNumber(in); ok {
			t.Fatalf("cnNumber(%q) should fail", in)
		}
	}
}
