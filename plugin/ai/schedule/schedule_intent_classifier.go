package schedule

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
)

// Pre-compiled regex patterns for intent classification.
// All patterns run against the lower-cased message.
var (
	viewPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:view|show|display|list|check) (?:my )?(?:calendar|schedule|events|agenda)`),
		regexp.MustCompile(`what(?:'s| is) (?:on )?(?:my )?calendar`),
		regexp.MustCompile(`what do i have scheduled`),
		regexp.MustCompile(`(?:show|tell) me my (?:calendar|schedule|events)`),
	}

	// Creation variants, from most to least specific. The first variant keeps
	// the keyword so that "tomorrow at noon" is not reduced to "at noon".
	createPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:add|create|schedule) ([^"]+?)(on|at|for|tomorrow|today|next|this) (.+)`),
		regexp.MustCompile(`(?:add|create|schedule) ([^"]+?) (?:on|at|for) (.+)`),
		regexp.MustCompile(`(?:add|create|schedule) (.+?) at (.+)`),
	}

	// summaryTailPattern strips a trailing time clause left in a greedy summary.
	summaryTailPattern = regexp.MustCompile(`\b(?:on|at|for|tomorrow|today)\b.*`)

	tripPattern = regexp.MustCompile(`(?:plan|add) (?:a |an )?trip to (.+?)(?: from| on| for| starting)? (.+?)?(?: to | until | through )(.+)?`)

	availabilityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|\b)(?:am i|are we|are you) (?:free|available|busy)(?: (?:on|for))?(?: (.+))?$`),
		regexp.MustCompile(`(?:^|\b)(?:check|show|what is|what's) (?:my )?availability(?: (?:on|for))?(?: (.+))?$`),
		regexp.MustCompile(`(?:^|\b)do i have anything(?: scheduled| planned| on)?(?: (?:on|for))?(?: (.+))?$`),
	}
)

// tripConnectors may separate a trip destination from its start phrase.
var tripConnectors = map[string]bool{"from": true, "on": true, "for": true, "starting": true}

var titleCaser = cases.Title(language.English)

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}

// Matcher recognizes one family of messages.
type Matcher interface {
	// Name identifies the matcher in logs and metrics.
	Name() string
	// Match inspects the lower-cased message; ok is false when it does not apply.
	Match(message string, now time.Time) (intent Intent, ok bool)
}

// IntentClassifier runs an ordered list of matchers; the first match wins.
type IntentClassifier struct {
	parser   *aitime.Parser
	matchers []Matcher
}

// NewIntentClassifier creates a classifier with the default matcher order:
// view, availability, recurring, create, trip.
func NewIntentClassifier(parser *aitime.Parser) *IntentClassifier {
	return &IntentClassifier{
		parser:   parser,
		matchers: DefaultMatchers(parser),
	}
}

// NewIntentClassifierWithMatchers creates a classifier with a custom matcher order.
func NewIntentClassifierWithMatchers(parser *aitime.Parser, matchers ...Matcher) *IntentClassifier {
	return &IntentClassifier{parser: parser, matchers: matchers}
}

// DefaultMatchers returns the matchers in evaluation order.
func DefaultMatchers(parser *aitime.Parser) []Matcher {
	return []Matcher{
		&viewMatcher{},
		&availabilityMatcher{parser: parser},
		&recurringMatcher{parser: parser},
		&createMatcher{parser: parser},
		&tripMatcher{parser: parser},
	}
}

// Location returns the zone intents are resolved in.
func (c *IntentClassifier) Location() *time.Location {
	return c.parser.Location()
}

// Classify classifies message against the parser clock.
func (c *IntentClassifier) Classify(message string) Intent {
	intent, _ := c.ClassifyAt(message, c.parser.Now())
	return intent
}

// ClassifyAt classifies message against now and reports which matcher won
// ("" for Unrecognized). It has no side effects.
func (c *IntentClassifier) ClassifyAt(message string, now time.Time) (Intent, string) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	now = now.In(c.parser.Location())
	for _, m := range c.matchers {
		if intent, ok := m.Match(normalized, now); ok {
			return intent, m.Name()
		}
	}
	return Unrecognized{Message: message}, ""
}

type viewMatcher struct{}

func (*viewMatcher) Name() string { return "view" }

func (*viewMatcher) Match(message string, _ time.Time) (Intent, bool) {
	for _, p := range viewPatterns {
		if p.MatchString(message) {
			return ViewCalendar{}, true
		}
	}
	return nil, false
}

type availabilityMatcher struct {
	parser *aitime.Parser
}

func (*availabilityMatcher) Name() string { return "availability" }

func (m *availabilityMatcher) Match(message string, now time.Time) (Intent, bool) {
	message = strings.TrimRight(message, "?!. ")
	for _, p := range availabilityPatterns {
		match := p.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		phrase := strings.TrimSpace(match[1])
		if phrase == "" {
			phrase = "today"
		}
		tr, err := m.parser.ParseRange(phrase, now)
		if err != nil {
			return nil, false
		}
		return CheckAvailability{Date: startOfDay(tr.Start)}, true
	}
	return nil, false
}

type createMatcher struct {
	parser *aitime.Parser
}

func (*createMatcher) Name() string { return "create" }

// Match tries each creation variant in order; a variant only wins when both
// its summary and time phrase are non-empty and the time phrase resolves.
func (m *createMatcher) Match(message string, now time.Time) (Intent, bool) {
	for i, p := range createPatterns {
		match := p.FindStringSubmatch(message)
		if match == nil {
			continue
		}

		summary := match[1]
		timePhrase := match[len(match)-1]
		if i == 0 {
			// Day words belong to the time phrase; "for" does not parse as one.
			if kw := match[2]; kw != "for" {
				timePhrase = kw + " " + timePhrase
			}
		}
		summary = stripAllDay(summaryTailPattern.ReplaceAllString(summary, ""))
		timePhrase = strings.TrimSpace(timePhrase)
		if summary == "" || timePhrase == "" {
			continue
		}

		isAllDay := strings.Contains(message, "all day")
		start, err := m.parser.Resolve(stripAllDay(timePhrase), now)
		if err != nil {
			continue
		}
		if isAllDay {
			start = startOfDay(start)
		}
		return CreateEvent{
			Summary:  TitleCase(summary),
			Start:    start,
			IsAllDay: isAllDay,
		}, true
	}
	return nil, false
}

type tripMatcher struct {
	parser *aitime.Parser
}

func (*tripMatcher) Name() string { return "trip" }

func (m *tripMatcher) Match(message string, now time.Time) (Intent, bool) {
	match := tripPattern.FindStringSubmatch(message)
	if match == nil {
		return nil, false
	}
	location := strings.TrimSpace(match[1])
	if location == "" {
		return nil, false
	}

	location, start, ok := m.splitLocationAndStart(location, strings.TrimSpace(match[2]), now)
	if !ok {
		start = now.AddDate(0, 0, 1)
	}

	end := start.AddDate(0, 0, 7)
	if endPhrase := strings.TrimSpace(match[3]); endPhrase != "" {
		if t, err := m.parser.Resolve(endPhrase, now); err == nil {
			end = t
			// "from next friday to monday": the end weekday comes after the start.
			for startOfDay(end).Before(startOfDay(start)) {
				end = end.AddDate(0, 0, 7)
			}
		}
	}

	return TripPlanning{
		Location:  TitleCase(location),
		StartDate: start,
		EndDate:   end,
	}, true
}

// splitLocationAndStart resolves the start phrase. When it does not parse,
// its leading words are moved into the location until the rest does, so
// "new york from friday" yields location "new york" and start "friday".
func (m *tripMatcher) splitLocationAndStart(location, startPhrase string, now time.Time) (string, time.Time, bool) {
	if startPhrase == "" {
		return location, time.Time{}, false
	}
	words := strings.Fields(startPhrase)
	for k := 0; k < len(words); k++ {
		rest := words[k:]
		if tripConnectors[rest[0]] {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		if t, err := m.parser.Resolve(strings.Join(rest, " "), now); err == nil {
			return strings.Join(append([]string{location}, words[:k]...), " "), t, true
		}
	}
	return location, time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func stripAllDay(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "all day", ""))
}
