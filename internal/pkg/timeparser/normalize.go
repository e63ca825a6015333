package timeparser

import (
	"regexp"
	"strconv"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var rewrites = []rewrite{
	// weekdays
	{regexp.MustCompile(`礼拜`), `星期`},
	{regexp.MustCompile(`(星期|周)天`), `${1}日`},
	{regexp.MustCompile(`(?:这个|这|本)(?:周|星期)\s*([一二三四五六日1-7])`), `本周星期$1`},
	{regexp.MustCompile(`(?:下一个|下个|下)(?:周|星期)\s*([一二三四五六日1-7])`), `下周星期$1`},
	{regexp.MustCompile(`周([一二三四五六日1-7])`), `星期$1`},
	{regexp.MustCompile(`(?:这个|这|本)(?:周|星期)\s*星期([一二三四五六日1-7])`), `本周星期$1`},
	{regexp.MustCompile(`(?:下一个|下个|下)(?:周|星期)\s*星期([一二三四五六日1-7])`), `下周星期$1`},
	// periods of day
	{regexp.MustCompile(`早上|早晨|清晨`), `上午`},
	{regexp.MustCompile(`夜里|夜晚|深夜`), `晚上`},
	{regexp.MustCompile(`今晚`), `今天晚上`},
	{regexp.MustCompile(`明晚`), `明天晚上`},
	{regexp.MustCompile(`今早`), `今天上午`},
	{regexp.MustCompile(`明早`), `明天上午`},
	{regexp.MustCompile(`\btonight\b`), `today evening`},
	{regexp.MustCompile(`\b(?:tmr|tmrw|tomorow|tommorow)\b`), `tomorrow`},
	{regexp.MustCompile(`(\d{1,2})\s*o'?clock\b`), `${1}:00`},
	// english weekday abbreviations
	{regexp.MustCompile(`\bmon\b`), `monday`},
	{regexp.MustCompile(`\btues?\b`), `tuesday`},
	{regexp.MustCompile(`\bweds?\b`), `wednesday`},
	{regexp.MustCompile(`\bthu(?:rs?)?\b`), `thursday`},
	{regexp.MustCompile(`\bfri\b`), `friday`},
	{regexp.MustCompile(`\bsat\b`), `saturday`},
	{regexp.MustCompile(`\bsun\b`), `sunday`},
	{regexp.MustCompile(`\b(this|next)\s+week\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), `$1 $2`},
}

var (
	cnHourRe   = regexp.MustCompile(`(星期)?([零一二两三四五六七八九十]{1,4})([点时])`)
	cnMinuteRe = regexp.MustCompile(`点([零一二两三四五六七八九十]{1,3})分`)
)

// Normalize collapses whitespace, lower-cases, maps colloquial weekday and
// period words to canonical tokens and turns Chinese hour numerals into digits.
func Normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for _, r := range rewrites {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = cnHourRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := cnHourRe.FindStringSubmatch(m)
		prefix, num := sub[1], sub[2]
		if prefix != "" {
			// 星期二十点 is Tuesday at ten.
			rs := []rune(num)
			prefix, num = prefix+string(rs[0]), string(rs[1:])
		}
		n, ok := cnNumber(num)
		if !ok || n > 24 {
			return m
		}
		return prefix + strconv.Itoa(n) + sub[3]
	})
	s = cnMinuteRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := cnMinuteRe.FindStringSubmatch(m)
		n, ok := cnNumber(sub[1])
		if !ok || n > 59 {
			return m
		}
		return "点" + strconv.Itoa(n) + "分"
	})
	return strings.Join(strings.Fields(s), " ")
}

var cnDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// cnNumber converts a Chinese numeral below 100 ("三", "十二", "二十五").
func cnNumber(s string) (int, bool) {
	rs := []rune(s)
	switch len(rs) {
	case 0:
		return 0, false
	case 1:
		if rs[0] == '十' {
			return 10, true
		}
		n, ok := cnDigits[rs[0]]
		return n, ok
	}
	idx := -1
	for i, r := range rs {
		if r == '十' {
			if idx >= 0 {
				return 0, false
			}
			idx = i
		}
	}
	if idx < 0 || len(rs) > 3 {
		return 0, false
	}
	tens := 1
	if idx == 1 {
		n, ok := cnDigits[rs[0]]
		if !ok || n == 0 {
			return 0, false
		}
		tens = n
	} else if idx != 0 {
		return 0, false
	}
	ones := 0
	if idx+1 < len(rs) {
		if idx+2 != len(rs) {
			return 0, false
		}
		n, ok := cnDigits[rs[idx+1]]
		if !ok || n == 0 {
			return 0, false
		}
		ones = n
	}
	return tens*10 + ones, true
}

// count parses a digit string or a Chinese numeral.
func count(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	return cnNumber(s)
}
