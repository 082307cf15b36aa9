// Package hours decides whether a donation center operates today from its
// free-form operating-hours descriptor, e.g. "Mon-Fri 9:00 - 17:00" or
// "Mon,Wed,Fri 8:00 - 12:00". The check is day-of-week only: the time range
// is shown to the user but never hides a center outside those hours.
package hours

import (
	"regexp"
	"strings"
	"time"
)

var timeRangePattern = regexp.MustCompile(`\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2}`)

// Sentinel descriptors that always evaluate as operating.
var alwaysOpen = map[string]bool{
	"":              true,
	"24/7":          true,
	"always open":   true,
	"open 24 hours": true,
	"daily":         true,
	"everyday":      true,
}

var dayIndex = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// OperatesToday reports whether the descriptor covers now's weekday.
// Anything it cannot interpret defaults to true: a malformed descriptor must
// never hide a center.
func OperatesToday(descriptor string, now time.Time) (open bool) {
	// Fail open on any internal parsing panic.
	open = true
	defer func() {
		if recover() != nil {
			open = true
		}
	}()

	trimmed := strings.TrimSpace(descriptor)
	if alwaysOpen[strings.ToLower(trimmed)] {
		return true
	}

	// Without a recognizable time range we cannot determine anything.
	if !timeRangePattern.MatchString(trimmed) {
		return true
	}

	daySpec := strings.TrimSpace(timeRangePattern.ReplaceAllString(trimmed, ""))
	if daySpec == "" {
		// Time range with no day specifier applies every day.
		return true
	}

	days, ok := parseDays(daySpec)
	if !ok {
		return true
	}
	return days[now.Weekday()]
}

// parseDays interprets either an inclusive day range ("Mon-Fri", wraparound
// allowed) or a comma-separated list ("Mon,Wed,Fri").
func parseDays(spec string) (map[time.Weekday]bool, bool) {
	days := make(map[time.Weekday]bool)

	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		from, okFrom := parseDay(parts[0])
		to, okTo := parseDay(parts[1])
		if !okFrom || !okTo {
			return nil, false
		}
		for d := from; ; d = (d + 1) % 7 {
			days[d] = true
			if d == to {
				break
			}
		}
		return days, true
	}

	for _, part := range strings.Split(spec, ",") {
		d, ok := parseDay(part)
		if !ok {
			return nil, false
		}
		days[d] = true
	}
	return days, true
}

func parseDay(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	d, ok := dayIndex[s[:3]]
	return d, ok
}
