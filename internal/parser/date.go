package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// relativeDayRegex matches relative day offsets like "+3d", "-1d", "+2w".
var relativeDayRegex = regexp.MustCompile(`^([+-])(\d+)([dw])$`)

// isoLayouts are tried before natural language parsing.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a calendar date relative to now and strips the time of day.
// Supports formats like:
//   - "2026-03-14" (ISO date)
//   - "+3d", "-1d", "+2w" (relative days)
//   - "today", "tomorrow", "next friday", "in 2 weeks" (natural language)
func ParseDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, NewDateError(input)
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return StartOfDay(t), nil
		}
	}

	if m := relativeDayRegex.FindStringSubmatch(strings.ToLower(input)); m != nil {
		n, _ := strconv.Atoi(m[2])
		if m[3] == "w" {
			n *= 7
		}
		if m[1] == "-" {
			n = -n
		}
		return StartOfDay(now).AddDate(0, 0, n), nil
	}

	// Use go-dateparser for natural language parsing
	cfg := &dateparser.Configuration{
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, NewDateError(input)
	}

	return StartOfDay(result.Time.In(now.Location())), nil
}

// ParseOptionalDate parses input with ParseDate, returning nil for an empty string.
func ParseOptionalDate(input string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	t, err := ParseDate(input, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartOfDay strips the time of day, keeping the location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
