package timeparser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	zhClockRe    = regexp.MustCompile(`(\d{1,2})[点时](?:(\d{1,2})分?|(半)|(一刻)|(三刻))?`)
	colonClockRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::\d{2})?(?:\s*(am|pm|a\.m\.|p\.m\.))?`)
	ampmClockRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)`)

	pmWordRe   = regexp.MustCompile(`(?i)下午|晚上|傍晚|\b(?:afternoon|evening|night)\b`)
	noonWordRe = regexp.MustCompile(`(?i)中午|\bnoon\b`)
	amWordRe   = regexp.MustCompile(`(?i)凌晨`)
)

type meridiem int

const (
	meridiemNone meridiem = iota
	meridiemAM
	meridiemPM
)

func parseMeridiem(s string) meridiem {
	switch strings.ReplaceAll(strings.ToLower(s), ".", "") {
	case "am":
		return meridiemAM
	case "pm":
		return meridiemPM
	}
	return meridiemNone
}

// extractClock finds the first hour/minute in s and applies the period of day
// written around it (下午3点 → 15:00, 中午1点 → 13:00, 12am → 00:00).
func extractClock(s string) (hour, minute int, ok bool) {
	mer := meridiemNone
	switch {
	case zhClockRe.MatchString(s):
		m := zhClockRe.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		switch {
		case m[2] != "":
			minute, _ = strconv.Atoi(m[2])
		case m[3] != "":
			minute = 30
		case m[4] != "":
			minute = 15
		case m[5] != "":
			minute = 45
		}
	case colonClockRe.MatchString(s):
		m := colonClockRe.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		mer = parseMeridiem(m[3])
	case ampmClockRe.MatchString(s):
		m := ampmClockRe.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		mer = parseMeridiem(m[2])
	default:
		return 0, 0, false
	}

	switch {
	case mer == meridiemAM || (mer == meridiemNone && amWordRe.MatchString(s)):
		if hour == 12 {
			hour = 0
		}
	case mer == meridiemPM || (mer == meridiemNone && pmWordRe.MatchString(s)):
		if hour < 12 {
			hour += 12
		}
	case noonWordRe.MatchString(s):
		if hour < 11 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

type periodDefault struct {
	re   *regexp.Regexp
	hour int
}

var periodDefaults = []periodDefault{
	{regexp.MustCompile(`(?i)上午|\bmorning\b`), 9},
	{regexp.MustCompile(`(?i)中午|\bnoon\b`), 12},
	{regexp.MustCompile(`(?i)傍晚|\bdusk\b`), 18},
	{regexp.MustCompile(`(?i)下午|\bafternoon\b`), 15},
	{regexp.MustCompile(`(?i)晚上|\b(?:evening|night)\b`), 20},
}

// defaultHour returns the hour implied by a bare period word such as 上午.
func defaultHour(s string) (int, bool) {
	for _, p := range periodDefaults {
		if p.re.MatchString(s) {
			return p.hour, true
		}
	}
	return 0, false
}
