package timeparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var generalFillerRe = regexp.MustCompile(`(?i)\b(?:at|on|the|of|in|by)\b|[\s,.!?，。！？]+`)

// generalParser wraps the english rule set of github.com/olebedev/when
// ("next week", "in 2 hours", "last friday of march").
type generalParser struct {
	w *when.Parser
}

func newGeneralParser() *generalParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &generalParser{w: w}
}

// parse only accepts a result that accounts for the whole expression apart
// from filler words. Plain offsets ("in 13 months") are left to the manual
// stage, which keeps the count instead of folding it into a year.
func (g *generalParser) parse(s string, now time.Time) (time.Time, bool) {
	if _, ok := parseRelativeOffset(s, now); ok {
		return time.Time{}, false
	}
	r, err := g.w.Parse(s, now)
	if err != nil || r == nil || strings.TrimSpace(r.Text) == "" {
		return time.Time{}, false
	}
	rest := strings.Replace(strings.ToLower(s), strings.ToLower(r.Text), " ", 1)
	if strings.TrimSpace(generalFillerRe.ReplaceAllString(rest, "")) != "" {
		return time.Time{}, false
	}
	return r.Time.In(now.Location()), true
}
