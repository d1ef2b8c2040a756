package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Patterns for single tokens.
var (
	isoDatePattern     = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?$`)
	clockPattern       = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?(am|pm)?$`)
	meridiemPattern    = regexp.MustCompile(`^(\d{1,2})(am|pm)$`)
	ordinalPattern     = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)?$`)
	yearPattern        = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// standardLayouts are tried on the raw input before the phrase grammar.
var standardLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// fillerWords carry no date or time signal.
var fillerWords = map[string]bool{
	"at":      true,
	"on":      true,
	"the":     true,
	"of":      true,
	"o'clock": true,
}

// relDayOffsets maps relative day words to day offsets.
var relDayOffsets = map[string]int{
	"today":     0,
	"tonight":   0,
	"tomorrow":  1,
	"tmrw":      1,
	"yesterday": -1,
}

// periodHours maps parts of the day to their default hour.
var periodHours = map[string]int{
	"morning":   9,
	"afternoon": 14,
	"evening":   19,
	"night":     20,
	"tonight":   20,
	// "afternoon" after the literal noon substitution
	"after12:00": 14,
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// numberWords are accepted as counts in offsets ("in two days", "an hour ago").
var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

type offsetUnit int

const (
	unitMinute offsetUnit = iota
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

var unitNames = map[string]offsetUnit{
	"minute": unitMinute, "minutes": unitMinute, "min": unitMinute, "mins": unitMinute,
	"hour": unitHour, "hours": unitHour, "hr": unitHour, "hrs": unitHour,
	"day": unitDay, "days": unitDay,
	"week": unitWeek, "weeks": unitWeek,
	"month": unitMonth, "months": unitMonth,
	"year": unitYear, "years": unitYear,
}

// Parser parses natural language time expressions.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a new time parser with the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// NewParserWithClock creates a parser whose "now" is supplied by clock.
func NewParserWithClock(timezone *time.Location, clock func() time.Time) *Parser {
	p := NewParser(timezone)
	if clock != nil {
		p.now = clock
	}
	return p
}

// Location returns the zone results are anchored to.
func (p *Parser) Location() *time.Location {
	return p.timezone
}

// Now returns the parser clock in its zone.
func (p *Parser) Now() time.Time {
	return p.now().In(p.timezone)
}

// Parse resolves input against the parser clock.
func (p *Parser) Parse(input string) (time.Time, error) {
	return p.Resolve(input, p.now())
}

// Resolve resolves a phrase against reference in the parser zone.
//
// The phrase is lower-cased, "noon" becomes "12:00" (or, when absent, "midnight"
// becomes "00:00"), and the remainder must be fully understood by the grammar.
// A result on the reference date but earlier than reference is moved one day ahead.
func (p *Parser) Resolve(input string, reference time.Time) (time.Time, error) {
	ref := reference.In(p.timezone)

	raw := strings.TrimSpace(input)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrParseFailure)
	}
	for _, layout := range standardLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.timezone); err == nil {
			return applyFutureBias(t.In(p.timezone), ref), nil
		}
	}

	tokens := tokenize(substituteNoonMidnight(raw))
	if len(tokens) == 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrParseFailure, input)
	}

	st := &phraseState{ref: ref, loc: p.timezone, period: -1}
	if err := st.consume(tokens); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %s", ErrParseFailure, input, err.Error())
	}
	if !st.matched {
		return time.Time{}, fmt.Errorf("%w: %q", ErrParseFailure, input)
	}

	t, err := st.resolve()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %s", ErrParseFailure, input, err.Error())
	}
	return applyFutureBias(t, ref), nil
}

// substituteNoonMidnight lower-cases s and replaces the noon/midnight literals.
// "midnight" is only considered when "noon" is absent.
func substituteNoonMidnight(s string) string {
	s = strings.ToLower(s)
	if strings.Contains(s, "noon") {
		return strings.ReplaceAll(s, "noon", "12:00")
	}
	return strings.ReplaceAll(s, "midnight", "00:00")
}

// applyFutureBias advances t by one day when it lies on ref's date but before ref.
func applyFutureBias(t, ref time.Time) time.Time {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.In(t.Location()).Date()
	if ty == ry && tm == rm && td == rd && t.Before(ref) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

func tokenize(s string) []string {
	s = strings.NewReplacer("a.m.", "am", "p.m.", "pm").Replace(s)
	s = strings.TrimRight(s, ".?!")
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// phraseState accumulates what the grammar understood so far.
type phraseState struct {
	ref time.Time
	loc *time.Location

	date      time.Time // midnight of the resolved day
	hasDate   bool
	keepClock bool // relative day words and the reference date carry the reference clock
	yearSet   bool
	rollYear  bool // month-day without a year rolls forward when passed

	hour, minute, second int
	hasTime              bool
	period               int
	offset               time.Duration
	matched              bool
}

func (st *phraseState) refMidnight() time.Time {
	y, m, d := st.ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, st.loc)
}

func (st *phraseState) setRelativeDay(days int) {
	st.date = st.refMidnight().AddDate(0, 0, days)
	st.hasDate = true
	st.keepClock = true
	st.rollYear = false
	st.matched = true
}

func (st *phraseState) setCalendarDay(t time.Time) {
	st.date = t
	st.hasDate = true
	st.keepClock = false
	st.matched = true
}

func (st *phraseState) setClock(h, m, s int) {
	st.hour, st.minute, st.second = h, m, s
	st.hasTime = true
	st.matched = true
}

// consume walks every token; an unknown token fails the whole phrase.
func (st *phraseState) consume(tokens []string) error {
	for i := 0; i < len(tokens); {
		n, err := st.consumeAt(tokens, i)
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

// consumeAt understands the construct starting at tokens[i] and returns how many tokens it used.
func (st *phraseState) consumeAt(tokens []string, i int) (int, error) {
	tok := tokens[i]
	next := func(k int) string {
		if i+k < len(tokens) {
			return tokens[i+k]
		}
		return ""
	}

	if fillerWords[tok] && tok != "at" {
		return 1, nil
	}

	switch tok {
	case "at":
		// "at 3" uses the afternoon heuristic for bare hours.
		if h, err := strconv.Atoi(next(1)); err == nil && h >= 0 && h <= 23 {
			if mer := next(2); mer == "am" || mer == "pm" {
				return 1, nil
			}
			if h >= 1 && h <= 6 {
				h += 12
			}
			st.setClock(h, 0, 0)
			if next(2) == "o'clock" {
				return 3, nil
			}
			return 2, nil
		}
		return 1, nil
	case "now", "right":
		if tok == "right" && next(1) != "now" {
			return 0, fmt.Errorf("unexpected %q", tok)
		}
		st.setRelativeDay(0)
		if tok == "right" {
			return 2, nil
		}
		return 1, nil
	case "day":
		if next(1) == "after" && next(2) == "tomorrow" {
			st.setRelativeDay(2)
			return 3, nil
		}
		if next(1) == "before" && next(2) == "yesterday" {
			st.setRelativeDay(-2)
			return 3, nil
		}
		return 0, fmt.Errorf("unexpected %q", tok)
	case "in":
		if count, ok := parseCount(next(1)); ok {
			if unit, ok := unitNames[next(2)]; ok {
				st.applyOffset(count, unit)
				return 3, nil
			}
		}
		j := 1
		if next(j) == "the" {
			j++
		}
		if h, ok := periodHours[next(j)]; ok {
			st.period = h
			st.matched = true
			return j + 1, nil
		}
		return 0, fmt.Errorf("unexpected %q", tok)
	case "this", "next", "last":
		return st.consumeModifier(tok, next(1))
	case "weekend":
		st.setCalendarDay(weekendStart(st.refMidnight()))
		return 1, nil
	case "am", "pm":
		return 0, fmt.Errorf("unexpected %q", tok)
	}

	if days, ok := relDayOffsets[tok]; ok {
		st.setRelativeDay(days)
		if tok == "tonight" {
			st.period = periodHours[tok]
		}
		return 1, nil
	}
	if h, ok := periodHours[tok]; ok {
		st.period = h
		st.matched = true
		return 1, nil
	}
	if wd, ok := weekdayNames[tok]; ok {
		st.setCalendarDay(weekdayOnOrAfter(st.refMidnight(), wd))
		return 1, nil
	}
	if month, ok := monthNames[tok]; ok {
		return st.consumeMonthDay(month, tokens, i)
	}

	// "5 june", "5th of june"
	if m := ordinalPattern.FindStringSubmatch(tok); m != nil {
		j := 1
		if next(j) == "of" {
			j++
		}
		if month, ok := monthNames[next(j)]; ok {
			day, _ := strconv.Atoi(m[1])
			used, err := st.setMonthDay(month, day, tokens, i+j+1)
			if err != nil {
				return 0, err
			}
			return j + 1 + used, nil
		}
	}

	// Offsets: "3 days from now", "2 hours ago", "a week later".
	if count, ok := parseCount(tok); ok {
		if unit, ok := unitNames[next(1)]; ok {
			switch {
			case next(2) == "from" && next(3) == "now":
				st.applyOffset(count, unit)
				return 4, nil
			case next(2) == "ago":
				st.applyOffset(-count, unit)
				return 3, nil
			case next(2) == "later":
				st.applyOffset(count, unit)
				return 3, nil
			}
			return 0, fmt.Errorf("dangling offset %q", tok)
		}
	}

	if m := isoDatePattern.FindStringSubmatch(tok); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		t, err := st.calendarDate(y, time.Month(mo), d)
		if err != nil {
			return 0, err
		}
		st.setCalendarDay(t)
		st.yearSet = true
		return 1, nil
	}
	if m := numericDatePattern.FindStringSubmatch(tok); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		y := st.ref.Year()
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
		}
		t, err := st.calendarDate(y, time.Month(mo), d)
		if err != nil {
			return 0, err
		}
		st.setCalendarDay(t)
		st.yearSet = m[3] != ""
		st.rollYear = !st.yearSet
		return 1, nil
	}

	if m := clockPattern.FindStringSubmatch(tok); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		s := 0
		if m[3] != "" {
			s, _ = strconv.Atoi(m[3])
		}
		mer := m[4]
		used := 1
		if mer == "" && (next(1) == "am" || next(1) == "pm") {
			mer = next(1)
			used = 2
		}
		h, err := applyMeridiem(h, mer)
		if err != nil {
			return 0, err
		}
		if mi > 59 || s > 59 {
			return 0, fmt.Errorf("invalid clock %q", tok)
		}
		st.setClock(h, mi, s)
		return used, nil
	}
	if m := meridiemPattern.FindStringSubmatch(tok); m != nil {
		h, _ := strconv.Atoi(m[1])
		h, err := applyMeridiem(h, m[2])
		if err != nil {
			return 0, err
		}
		st.setClock(h, 0, 0)
		return 1, nil
	}
	if h, err := strconv.Atoi(tok); err == nil && (next(1) == "am" || next(1) == "pm") {
		h, err := applyMeridiem(h, next(1))
		if err != nil {
			return 0, err
		}
		st.setClock(h, 0, 0)
		return 2, nil
	}

	return 0, fmt.Errorf("unexpected %q", tok)
}

// consumeModifier handles "this|next|last" followed by a weekday, week, month, year,
// weekend or part of the day.
func (st *phraseState) consumeModifier(mod, target string) (int, error) {
	today := st.refMidnight()
	if wd, ok := weekdayNames[target]; ok {
		switch mod {
		case "this":
			st.setCalendarDay(weekdayOnOrAfter(today, wd))
		case "next":
			st.setCalendarDay(weekdayOnOrAfter(today.AddDate(0, 0, 1), wd))
		case "last":
			st.setCalendarDay(weekdayOnOrAfter(today.AddDate(0, 0, -7), wd))
		}
		return 2, nil
	}

	sign := map[string]int{"this": 0, "next": 1, "last": -1}[mod]
	switch target {
	case "week":
		st.setRelativeDay(7 * sign)
	case "month":
		st.setRelativeDay(0)
		st.date = st.date.AddDate(0, sign, 0)
	case "year":
		st.setRelativeDay(0)
		st.date = st.date.AddDate(sign, 0, 0)
	case "weekend":
		if sign == 0 {
			st.setCalendarDay(weekendStart(today))
		} else {
			st.setCalendarDay(upcomingWeekend(today).AddDate(0, 0, 7*sign))
		}
	default:
		h, ok := periodHours[target]
		if !ok || mod == "next" {
			return 0, fmt.Errorf("unexpected %q after %q", target, mod)
		}
		st.setRelativeDay(0)
		if mod == "last" {
			st.setRelativeDay(-1)
		}
		st.period = h
	}
	return 2, nil
}

// consumeMonthDay handles "june 5", "june 5th 2027" and "june 2027".
func (st *phraseState) consumeMonthDay(month time.Month, tokens []string, i int) (int, error) {
	if i+1 < len(tokens) {
		if m := ordinalPattern.FindStringSubmatch(tokens[i+1]); m != nil {
			day, _ := strconv.Atoi(m[1])
			used, err := st.setMonthDay(month, day, tokens, i+2)
			if err != nil {
				return 0, err
			}
			return 2 + used, nil
		}
		if yearPattern.MatchString(tokens[i+1]) {
			y, _ := strconv.Atoi(tokens[i+1])
			st.setCalendarDay(time.Date(y, month, 1, 0, 0, 0, 0, st.loc))
			st.yearSet = true
			return 2, nil
		}
	}
	used, err := st.setMonthDay(month, 1, tokens, i+1)
	if err != nil {
		return 0, err
	}
	return 1 + used, nil
}

// setMonthDay sets the calendar day and consumes an optional year at tokens[yearAt].
func (st *phraseState) setMonthDay(month time.Month, day int, tokens []string, yearAt int) (int, error) {
	year, used := st.ref.Year(), 0
	if yearAt < len(tokens) && yearPattern.MatchString(tokens[yearAt]) {
		year, _ = strconv.Atoi(tokens[yearAt])
		used = 1
	}
	t, err := st.calendarDate(year, month, day)
	if err != nil {
		return 0, err
	}
	st.setCalendarDay(t)
	st.yearSet = used == 1
	st.rollYear = !st.yearSet
	return used, nil
}

func (st *phraseState) calendarDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > daysIn(year, month) {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, st.loc), nil
}

func (st *phraseState) applyOffset(count int, unit offsetUnit) {
	if !st.hasDate {
		st.setRelativeDay(0)
	}
	switch unit {
	case unitMinute:
		st.offset += time.Duration(count) * time.Minute
	case unitHour:
		st.offset += time.Duration(count) * time.Hour
	case unitDay:
		st.date = st.date.AddDate(0, 0, count)
	case unitWeek:
		st.date = st.date.AddDate(0, 0, 7*count)
	case unitMonth:
		st.date = st.date.AddDate(0, count, 0)
	case unitYear:
		st.date = st.date.AddDate(count, 0, 0)
	}
	st.matched = true
}

// resolve combines the understood parts into one instant.
func (st *phraseState) resolve() (time.Time, error) {
	date := st.refMidnight()
	if st.hasDate {
		date = st.date
	}
	if st.rollYear && date.Before(st.refMidnight()) {
		date = date.AddDate(1, 0, 0)
	}

	h, m, s, ns := 0, 0, 0, 0
	switch {
	case st.hasTime:
		h, m, s = st.hour, st.minute, st.second
		if st.period >= 12 && h < 12 {
			h += 12
		} else if st.period >= 0 && st.period < 12 && h == 12 {
			h = 0
		}
	case st.period >= 0:
		h = st.period
	case !st.hasDate || st.keepClock || date.Equal(st.refMidnight()):
		// A date-only phrase naming the reference date means today, not the
		// already passed midnight that future-bias would push to tomorrow.
		h, m, s, ns = st.ref.Hour(), st.ref.Minute(), st.ref.Second(), st.ref.Nanosecond()
	}

	y, mo, d := date.Date()
	return time.Date(y, mo, d, h, m, s, ns, st.loc).Add(st.offset), nil
}

func parseCount(tok string) (int, bool) {
	if n, ok := numberWords[tok]; ok {
		return n, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func applyMeridiem(h int, mer string) (int, error) {
	switch mer {
	case "":
		if h > 23 {
			return 0, fmt.Errorf("invalid hour %d", h)
		}
		return h, nil
	case "am", "pm":
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("invalid hour %d%s", h, mer)
		}
		if h == 12 {
			h = 0
		}
		if mer == "pm" {
			h += 12
		}
		return h, nil
	}
	return 0, fmt.Errorf("invalid meridiem %q", mer)
}

// weekdayOnOrAfter returns the first day on or after from that falls on wd.
func weekdayOnOrAfter(from time.Time, wd time.Weekday) time.Time {
	diff := (int(wd) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, diff)
}

// upcomingWeekend returns the Saturday of the current or coming weekend.
func upcomingWeekend(today time.Time) time.Time {
	if today.Weekday() == time.Sunday {
		return today.AddDate(0, 0, -1)
	}
	return weekdayOnOrAfter(today, time.Saturday)
}

// weekendStart is the first day of the current or coming weekend that is not in the past.
func weekendStart(today time.Time) time.Time {
	if sat := upcomingWeekend(today); !sat.Before(today) {
		return sat
	}
	return today
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
