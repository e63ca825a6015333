package command

import (
	"errors"
	"strings"
	"time"

	"remindbot/internal/domain/entity"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/timeparser"
)

var errUsage = errors.New("command needs a time and a content")

// createArgs is a "remind me" command split into its parts.
type createArgs struct {
	Expr       string
	Content    string
	Recurrence string
}

// trailingFillers may end a parseable prefix without belonging to the time.
var trailingFillers = map[string]bool{"at": true, "on": true, "the": true, "by": true, "in": true, "在": true}

// splitCreate splits "<time> <content> [recurrence]". A trailing recurrence
// word is taken off first. The time expression is the longest unbroken run of
// parseable token prefixes: the first prefix that fails after a success ends
// the run, so later time words inside the content never pull it forward. At
// least one token is left for the content.
func splitCreate(p *timeparser.Parser, args string, now time.Time) (createArgs, error) {
	tokens := strings.Fields(args)
	var out createArgs

	if n := len(tokens); n >= 3 && entity.IsRecurrenceWord(tokens[n-2]+" "+tokens[n-1]) {
		out.Recurrence = tokens[n-2] + " " + tokens[n-1]
		tokens = tokens[:n-2]
	} else if n >= 3 && entity.IsRecurrenceWord(tokens[n-1]) {
		out.Recurrence = tokens[n-1]
		tokens = tokens[:n-1]
	}
	if len(tokens) < 2 {
		return out, errUsage
	}

	var (
		best    int
		matched bool
		seenErr error
	)
	for k := 1; k < len(tokens); k++ {
		expr := strings.Join(tokens[:k], " ")
		if _, rest, ok := entity.DetectRecurrence(expr); ok {
			if rest == "" {
				continue
			}
			expr = rest
		}
		if _, err := p.Parse(expr, now); err != nil {
			if matched {
				break
			}
			if errors.Is(err, appErrors.ErrPastTime) || seenErr == nil {
				seenErr = err
			}
			continue
		}
		matched = true
		if !trailingFillers[strings.ToLower(tokens[k-1])] {
			best = k
		}
	}
	if best == 0 {
		if seenErr == nil {
			seenErr = appErrors.ErrParseFailure
		}
		return out, seenErr
	}
	out.Expr = strings.Join(tokens[:best], " ")
	out.Content = strings.Join(tokens[best:], " ")
	return out, nil
}
