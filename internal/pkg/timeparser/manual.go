package timeparser

import (
	"regexp"
	"strings"
	"time"
)

// Layouts carrying a year.
var fullLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04",
	"2006-1-2 15:04",
	"2006年1月2日 15点04分",
	"2006年1月2日15点04分",
	"2006年1月2日 15点",
	"2006年1月2日15点",
	"2006年1月2日 15:04",
	"2006年1月2日15:04",
}

// Layouts without a year. The year is the current one, or the next when that
// date has already passed.
var yearlessLayouts = []string{
	"01-02 15:04",
	"1-2 15:04",
	"01/02 15:04",
	"1/2 15:04",
	"1月2日 15点04分",
	"1月2日15点04分",
	"1月2日 15点",
	"1月2日15点",
	"1月2日 15:04",
	"1月2日15:04",
}

// Date-only layouts fire at dateOnlyHour.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006年1月2日",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"15点04分",
	"15点04",
	"15点",
}

const dateOnlyHour = 9

var (
	zhRelativeRe  = regexp.MustCompile(`^(\d+|[零一二两三四五六七八九十]+|半)\s*个?\s*(分钟|分|小时|钟头|天|日|周|星期|礼拜|月)\s*(?:之|以)?后$`)
	enRelativeRe  = regexp.MustCompile(`(?i)^(in\s+)?(\d+|an?|one|two|three|four|five|six|seven|eight|nine|ten|half\s+an?)\s*(minute|min|hour|hr|day|week|month)s?(?:\s+(from\s+now|later))?$`)
	dayOfMonthRe  = regexp.MustCompile(`^(\d{1,2})\s*[号日]\s*(.*)$`)
	enNumberWords = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
)

var unitDurations = map[string]time.Duration{
	"分钟": time.Minute, "分": time.Minute, "minute": time.Minute, "min": time.Minute,
	"小时": time.Hour, "钟头": time.Hour, "hour": time.Hour, "hr": time.Hour,
	"天": 24 * time.Hour, "日": 24 * time.Hour, "day": 24 * time.Hour,
	"周": 7 * 24 * time.Hour, "星期": 7 * 24 * time.Hour, "礼拜": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour,
	"月": 30 * 24 * time.Hour, "month": 30 * 24 * time.Hour,
}

// parseManual is the last resort: explicit layouts, relative offsets such as
// 30分钟后 or "2 hours from now" and day-of-month expressions like 15号 9点.
func parseManual(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if at, ok := parseRelativeOffset(s, now); ok {
		return at, true
	}
	loc := now.Location()
	for _, layout := range fullLayouts {
		if at, err := time.ParseInLocation(layout, s, loc); err == nil {
			return at, true
		}
	}
	for _, layout := range dateLayouts {
		if at, err := time.ParseInLocation(layout, s, loc); err == nil {
			return at.Add(dateOnlyHour * time.Hour), true
		}
	}
	for _, layout := range yearlessLayouts {
		at, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		at = time.Date(now.Year(), at.Month(), at.Day(), at.Hour(), at.Minute(), at.Second(), 0, loc)
		if !at.After(now) {
			at = at.AddDate(1, 0, 0)
		}
		return at, true
	}
	for _, layout := range timeLayouts {
		at, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		y, mo, d := now.Date()
		at = time.Date(y, mo, d, at.Hour(), at.Minute(), at.Second(), 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, true
	}
	return parseDayOfMonth(s, now)
}

func parseRelativeOffset(s string, now time.Time) (time.Time, bool) {
	if m := zhRelativeRe.FindStringSubmatch(s); m != nil {
		unit := unitDurations[m[2]]
		if m[1] == "半" {
			return now.Add(unit / 2), true
		}
		n, ok := count(m[1])
		if !ok || n <= 0 {
			return time.Time{}, false
		}
		return now.Add(time.Duration(n) * unit), true
	}
	m := enRelativeRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[4] == "") {
		return time.Time{}, false
	}
	unit := unitDurations[strings.ToLower(m[3])]
	num := strings.ToLower(strings.Join(strings.Fields(m[2]), " "))
	if strings.HasPrefix(num, "half") {
		return now.Add(unit / 2), true
	}
	n, ok := enNumberWords[num]
	if !ok {
		if n, ok = count(num); !ok || n <= 0 {
			return time.Time{}, false
		}
	}
	return now.Add(time.Duration(n) * unit), true
}

// parseDayOfMonth resolves "15号 9点" to the next 15th at 09:00, skipping
// months that have no such day.
func parseDayOfMonth(s string, now time.Time) (time.Time, bool) {
	m := dayOfMonthRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	dom, _ := count(m[1])
	if dom < 1 || dom > 31 {
		return time.Time{}, false
	}
	h, mi := dateOnlyHour, 0
	if rest := strings.TrimSpace(m[2]); rest != "" {
		var ok bool
		if h, mi, ok = extractClock(rest); !ok {
			if h, ok = defaultHour(rest); !ok {
				return time.Time{}, false
			}
			mi = 0
		}
	}
	y, mo, _ := now.Date()
	loc := now.Location()
	for i := 0; i < 13; i++ {
		first := time.Date(y, mo+time.Month(i), 1, 0, 0, 0, 0, loc)
		if time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, loc).Day() < dom {
			continue
		}
		at := time.Date(first.Year(), first.Month(), dom, h, mi, 0, 0, loc)
		if at.After(now) {
			return at, true
		}
	}
	return time.Time{}, false
}
