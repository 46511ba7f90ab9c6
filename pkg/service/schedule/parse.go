// Package schedule turns free-text availability lines into bookable slots.
//
// The parser handles one fixed grammar, "<day> <month-name> <start>-<end>",
// with optional minutes and am/pm markers. It is a best-effort heuristic,
// not natural-language time parsing: an unmarked side inherits the other's
// meridian, flipping to the opposite one when the range would otherwise run
// backwards (so "11-1pm" reads as 11am-1pm), and a still-degenerate range
// gets one hour added to its end.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNotParseable marks an availability line that does not match the
// expected pattern. Callers skip the line; it is not a hard error.
var ErrNotParseable = goerr.New("availability line not parseable")

var linePattern = regexp.MustCompile(
	`(?i)^\s*(\d{1,2})\s+([a-z]+)\.?\s+(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)?\s*[-–]\s*(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)?\s*$`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parser resolves availability lines in a single fixed operating time zone,
// inferring the year from the current date.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

// ParserOption is a functional option for Parser configuration
type ParserOption func(*Parser)

// WithNow overrides the clock used for year inference.
func WithNow(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser creates a parser for the given operating time zone.
func NewParser(loc *time.Location, opts ...ParserOption) *Parser {
	p := &Parser{
		loc: loc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseLine parses one availability line into a half-open interval. The end
// is guaranteed to come after the start.
func (p *Parser) ParseLine(line string) (time.Time, time.Time, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, time.Time{}, goerr.Wrap(ErrNotParseable, "line does not match pattern",
			goerr.V("line", line))
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := monthByName(m[2])
	if !ok {
		return time.Time{}, time.Time{}, goerr.Wrap(ErrNotParseable, "unknown month name",
			goerr.V("line", line), goerr.V("month", m[2]))
	}

	startHour, _ := strconv.Atoi(m[3])
	startMinute := minuteOf(m[4])
	startMeridian := strings.ToLower(m[5])
	endHour, _ := strconv.Atoi(m[6])
	endMinute := minuteOf(m[7])
	endMeridian := strings.ToLower(m[8])

	// Meridian inheritance: a side without its own marker takes the other's.
	startInherits := startMeridian == ""
	endInherits := endMeridian == ""
	if startInherits {
		startMeridian = endMeridian
	}
	if endInherits {
		endMeridian = startMeridian
	}

	rawStartHour := startHour
	rawEndHour := endHour
	startHour = applyMeridian(startHour, startMeridian)
	endHour = applyMeridian(endHour, endMeridian)

	// An inherited marker that runs the range backwards means it crosses
	// noon ("11-1pm", "11am-1"): the unmarked side sits on the opposite
	// meridian.
	if startMeridian != "" && startHour > endHour {
		switch {
		case startInherits:
			startHour = applyMeridian(rawStartHour, oppositeMeridian(startMeridian))
		case endInherits:
			endHour = applyMeridian(rawEndHour, oppositeMeridian(endMeridian))
		}
	}
	if startHour > 23 || endHour > 23 || startMinute > 59 || endMinute > 59 || day < 1 || day > 31 {
		return time.Time{}, time.Time{}, goerr.Wrap(ErrNotParseable, "time out of range",
			goerr.V("line", line))
	}

	year := p.now().In(p.loc).Year()
	start := time.Date(year, month, day, startHour, startMinute, 0, 0, p.loc)
	end := time.Date(year, month, day, endHour, endMinute, 0, 0, p.loc)

	// Residual degenerate ranges ("5-5pm") get a single one-hour nudge on
	// the end.
	if !end.After(start) {
		end = end.Add(time.Hour)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, goerr.Wrap(ErrNotParseable, "range runs backwards",
			goerr.V("line", line))
	}

	return start, end, nil
}

func monthByName(name string) (time.Month, bool) {
	lower := strings.ToLower(name)
	if len(lower) < 3 {
		return 0, false
	}
	month, ok := monthsByPrefix[lower[:3]]
	if !ok {
		return 0, false
	}
	// Reject things like "Maybe": longer names must spell the month out.
	if len(lower) > 3 && !strings.HasPrefix(strings.ToLower(month.String()), lower) {
		return 0, false
	}
	return month, ok
}

func minuteOf(capture string) int {
	if capture == "" {
		return 0
	}
	minute, _ := strconv.Atoi(capture)
	return minute
}

func oppositeMeridian(meridian string) string {
	if meridian == "pm" {
		return "am"
	}
	return "pm"
}

func applyMeridian(hour int, meridian string) int {
	switch meridian {
	case "pm":
		if hour < 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}
