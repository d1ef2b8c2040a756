package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
)

// ErrNotRecurring is returned when a message does not follow the recurring grammar.
var ErrNotRecurring = errors.New("not a recurring event phrase")

// DefaultRecurringTime is used when a recurring phrase names no time.
var DefaultRecurringTime = TimeOfDay{Hour: 9}

// Recurring grammar:
//
//	(add|create|schedule) <summary> [at <time>] every <interval>
//	    ( from <start> (to|until|through) <end>
//	    | for <N> (days|weeks) [starting <start>] ) [at <time>]
//
// interval is one of day, daily, other day, week, weekly, N days, N weeks.
// "all day" anywhere in the message makes every instance all-day.
var (
	recurringTimePattern = regexp.MustCompile(`\bat (\d{1,2}(?::\d{2})?(?: ?[ap]m)?|noon|midnight)\b`)
	recurringPattern     = regexp.MustCompile(`^(?:add|create|schedule) (.+?) every (other day|day|daily|week|weekly|\d+ days?|\d+ weeks?)(?: (.+))?$`)
	rangeTailPattern     = regexp.MustCompile(`^from (.+?) (?:to|until|through) (.+)$`)
	countTailPattern     = regexp.MustCompile(`^for (\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve) (days?|weeks?)(?: starting (.+))?$`)
	spacePattern         = regexp.MustCompile(`\s+`)
)

var countWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// ParseRecurringPhrase parses a recurring creation request relative to now.
// Dates are midnight in the parser zone.
func ParseRecurringPhrase(message string, parser *aitime.Parser, now time.Time) (RecurringEvent, error) {
	msg := strings.TrimRight(strings.ToLower(strings.TrimSpace(message)), ".!")
	if !strings.Contains(msg, " every ") {
		return RecurringEvent{}, ErrNotRecurring
	}

	ev := RecurringEvent{BaseTimeOfDay: DefaultRecurringTime}
	if strings.Contains(msg, "all day") {
		ev.IsAllDay = true
		msg = strings.ReplaceAll(msg, "all day", "")
	}

	if loc := recurringTimePattern.FindStringSubmatchIndex(msg); loc != nil {
		t, err := parser.Resolve("at "+msg[loc[2]:loc[3]], now)
		if err != nil {
			return RecurringEvent{}, fmt.Errorf("recurring time: %w", err)
		}
		ev.BaseTimeOfDay = TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
		msg = msg[:loc[0]] + msg[loc[1]:]
	}
	msg = strings.TrimSpace(spacePattern.ReplaceAllString(msg, " "))

	m := recurringPattern.FindStringSubmatch(msg)
	if m == nil {
		return RecurringEvent{}, ErrNotRecurring
	}
	ev.Summary = TitleCase(m[1])
	if ev.Summary == "" {
		return RecurringEvent{}, ErrNotRecurring
	}

	interval, err := parseInterval(m[2])
	if err != nil {
		return RecurringEvent{}, err
	}
	ev.IntervalDays = interval

	start, end, err := parseRecurringRange(m[3], parser, now)
	if err != nil {
		return RecurringEvent{}, err
	}
	ev.StartDate, ev.EndDate = start, end
	return ev, nil
}

// parseInterval converts an interval phrase into days.
func parseInterval(s string) (int, error) {
	switch s {
	case "day", "daily":
		return 1, nil
	case "other day":
		return 2, nil
	case "week", "weekly":
		return 7, nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	if strings.HasPrefix(fields[1], "week") {
		n *= 7
	}
	return n, nil
}

func parseRecurringRange(tail string, parser *aitime.Parser, now time.Time) (time.Time, time.Time, error) {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: missing date range", ErrNotRecurring)
	}

	if m := rangeTailPattern.FindStringSubmatch(tail); m != nil {
		start, err := resolveDay(m[1], parser, now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := resolveDay(m[2], parser, now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
				end.Format("2006-01-02"), start.Format("2006-01-02"))
		}
		return start, end, nil
	}

	if m := countTailPattern.FindStringSubmatch(tail); m != nil {
		n, ok := countWords[m[1]]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		if n <= 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid count %q", m[1])
		}
		days := n
		if strings.HasPrefix(m[2], "week") {
			days = 7 * n
		}

		start := startOfDay(now)
		if m[3] != "" {
			var err error
			if start, err = resolveDay(m[3], parser, now); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		return start, start.AddDate(0, 0, days-1), nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("%w: unsupported date range %q", ErrNotRecurring, tail)
}

// resolveDay resolves a date phrase to midnight, treating weekday and range
// words as whole days so that "monday" on a Monday means today.
func resolveDay(phrase string, parser *aitime.Parser, now time.Time) (time.Time, error) {
	tr, err := parser.ParseRange(phrase, now)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(tr.Start), nil
}

type recurringMatcher struct {
	parser *aitime.Parser
}

func (*recurringMatcher) Name() string { return "recurring" }

func (m *recurringMatcher) Match(message string, now time.Time) (Intent, bool) {
	ev, err := ParseRecurringPhrase(message, m.parser, now)
	if err != nil {
		return nil, false
	}
	return ev, true
}
