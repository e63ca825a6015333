// Package timeparser turns free-form Chinese or English time expressions
// ("明天下午3点", "下周一 9点", "30分钟后", "next friday 5pm", "2026-03-01 08:00")
// into an absolute instant in a fixed time zone.
//
// Parse runs a fixed pipeline of sub-parsers against a normalized copy of the
// input and, if none yields a future instant, against the raw input. The first
// future result wins.
package timeparser

import (
	"fmt"
	"strings"
	"time"

	appErrors "remindbot/internal/pkg/errors"
)

// Rule names reported in Match.Rule.
const (
	RuleWeekday     = "weekday"
	RuleRelativeDay = "relative-day"
	RuleClock       = "clock"
	RuleGeneral     = "general"
	RuleManual      = "manual"
)

// Match is a successfully parsed expression.
type Match struct {
	At   time.Time
	Rule string
}

type subParser struct {
	name  string
	parse func(s string, now time.Time) (time.Time, bool)
}

// Parser is safe for concurrent use.
type Parser struct {
	loc      *time.Location
	pipeline []subParser
}

// New returns a parser resolving expressions in loc (UTC when nil).
func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	g := newGeneralParser()
	return &Parser{
		loc: loc,
		pipeline: []subParser{
			{RuleWeekday, parseWeekday},
			{RuleRelativeDay, parseRelativeDay},
			{RuleClock, parseClockOnly},
			{RuleGeneral, g.parse},
			{RuleManual, parseManual},
		},
	}
}

// Location returns the zone the parser resolves expressions in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse resolves text relative to now. It returns ErrParseFailure when no
// sub-parser understood the text and ErrPastTime when every interpretation
// lies at or before now.
func (p *Parser) Parse(text string, now time.Time) (Match, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Match{}, fmt.Errorf("%w: empty expression", appErrors.ErrParseFailure)
	}
	now = now.In(p.loc)

	candidates := []string{Normalize(raw)}
	if candidates[0] != raw {
		candidates = append(candidates, raw)
	}

	sawPast := false
	for _, s := range candidates {
		for _, sp := range p.pipeline {
			at, ok := sp.parse(s, now)
			if !ok {
				continue
			}
			if at.After(now) {
				return Match{At: at.In(p.loc), Rule: sp.name}, nil
			}
			sawPast = true
		}
	}
	if sawPast {
		return Match{}, fmt.Errorf("%w: %q", appErrors.ErrPastTime, text)
	}
	return Match{}, fmt.Errorf("%w: %q", appErrors.ErrParseFailure, text)
}

// dateAt returns the date of base shifted by days, at h:m:00 in base's zone.
func dateAt(base time.Time, days, h, m int) time.Time {
	y, mo, d := base.Date()
	return time.Date(y, mo, d+days, h, m, 0, 0, base.Location())
}
