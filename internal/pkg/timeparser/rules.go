package timeparser

import (
	"regexp"
	"strings"
	"time"
)

var (
	zhWeekdayRe = regexp.MustCompile(`(本周|下周)?星期([一二三四五六日1-7])`)
	enWeekdayRe = regexp.MustCompile(`(?i)\b(?:(this|next|coming)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

var zhWeekdays = map[string]time.Weekday{
	"一": time.Monday, "二": time.Tuesday, "三": time.Wednesday, "四": time.Thursday,
	"五": time.Friday, "六": time.Saturday, "日": time.Sunday,
	"1": time.Monday, "2": time.Tuesday, "3": time.Wednesday, "4": time.Thursday,
	"5": time.Friday, "6": time.Saturday, "7": time.Sunday,
}

var enWeekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

type weekRef int

const (
	weekBare weekRef = iota
	weekThis
	weekNext
)

// mondayIndex numbers weekdays from Monday (0) to Sunday (6).
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// parseWeekday handles 星期三 15点, 下周一 9点, next friday 5pm. "Next" always
// lands in the following week (7 to 13 days ahead), "this" stays inside the
// current Monday-based week and a bare weekday picks the next occurrence.
func parseWeekday(s string, now time.Time) (time.Time, bool) {
	if !onlyTimeWords(s) {
		return time.Time{}, false
	}
	var (
		target time.Weekday
		ref    weekRef
	)
	if m := zhWeekdayRe.FindStringSubmatch(s); m != nil {
		target = zhWeekdays[m[2]]
		switch m[1] {
		case "本周":
			ref = weekThis
		case "下周":
			ref = weekNext
		}
	} else if m := enWeekdayRe.FindStringSubmatch(s); m != nil {
		target = enWeekdays[strings.ToLower(m[2])]
		switch strings.ToLower(m[1]) {
		case "this":
			ref = weekThis
		case "next", "coming":
			ref = weekNext
		}
	} else {
		return time.Time{}, false
	}

	h, mi, ok := extractClock(s)
	if !ok {
		if h, ok = defaultHour(s); !ok {
			return time.Time{}, false
		}
	}

	today, want := mondayIndex(now.Weekday()), mondayIndex(target)
	switch ref {
	case weekNext:
		return dateAt(now, (want-today+7)%7+7, h, mi), true
	case weekThis:
		return dateAt(now, want-today, h, mi), true
	}
	at := dateAt(now, (want-today+7)%7, h, mi)
	if !at.After(now) {
		at = at.AddDate(0, 0, 7)
	}
	return at, true
}

type dayWord struct {
	re     *regexp.Regexp
	offset int
}

var dayWords = []dayWord{
	{regexp.MustCompile(`大后天`), 3},
	{regexp.MustCompile(`后天|后日`), 2},
	{regexp.MustCompile(`明天|明日`), 1},
	{regexp.MustCompile(`今天|今日`), 0},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?day\s+after\s+tomorrow\b`), 2},
	{regexp.MustCompile(`(?i)\btomorrow\b`), 1},
	{regexp.MustCompile(`(?i)\btoday\b`), 0},
}

// parseRelativeDay handles 明天下午3点, 后天上午, tomorrow 9am. Without an hour
// the period word picks a default, and without either the current clock time
// of the target day is used.
func parseRelativeDay(s string, now time.Time) (time.Time, bool) {
	if !onlyTimeWords(s) {
		return time.Time{}, false
	}
	offset := -1
	for _, w := range dayWords {
		if w.re.MatchString(s) {
			offset = w.offset
			break
		}
	}
	if offset < 0 {
		return time.Time{}, false
	}
	if h, m, ok := extractClock(s); ok {
		return dateAt(now, offset, h, m), true
	}
	if h, ok := defaultHour(s); ok {
		return dateAt(now, offset, h, 0), true
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d+offset, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), true
}

var timeWordRes = []*regexp.Regexp{
	zhWeekdayRe,
	enWeekdayRe,
	regexp.MustCompile(`(?i)大后天|后天|后日|明天|明日|今天|今日|\b(?:the\s+)?day\s+after\s+tomorrow\b|\btomorrow\b|\btoday\b`),
	colonClockRe,
	ampmClockRe,
	zhClockRe,
	regexp.MustCompile(`(?i)上午|下午|晚上|傍晚|中午|凌晨|整|钟|\b(?:morning|afternoon|evening|night|noon|dusk|at|on|the)\b|[\s,.!?，。！？]+`),
}

// onlyTimeWords reports whether s is made of day, weekday, clock and period
// words alone. 明天 9点 准备 is not a time expression even though it contains one.
func onlyTimeWords(s string) bool {
	for _, re := range timeWordRes {
		s = re.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s) == ""
}

var (
	clockFillerRe = regexp.MustCompile(`(?i)上午|下午|晚上|傍晚|中午|凌晨|整|钟|o'?clock|\b(?:at|morning|afternoon|evening|night|noon)\b|\s+`)
	bareClockRe   = regexp.MustCompile(`(?i)^(?:\d{1,2}[点时](?:\d{1,2}分?|半|一刻|三刻)?|\d{1,2}:\d{2}(?::\d{2})?(?:am|pm|a\.m\.|p\.m\.)?|\d{1,2}(?:am|pm|a\.m\.|p\.m\.))$`)
)

// parseClockOnly handles expressions that are nothing but a clock time such as
// 下午3点, 15:30 or 8pm. The result is today at that time, or tomorrow when the
// time has already passed.
func parseClockOnly(s string, now time.Time) (time.Time, bool) {
	if !bareClockRe.MatchString(clockFillerRe.ReplaceAllString(s, "")) {
		return time.Time{}, false
	}
	h, m, ok := extractClock(s)
	if !ok {
		return time.Time{}, false
	}
	at := dateAt(now, 0, h, m)
	if !at.After(now) {
		at = dateAt(now, 1, h, m)
	}
	return at, true
}
