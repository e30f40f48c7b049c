package jira

import (
	"fmt"
	"regexp"
	"strconv"
)

// minutesPerDay is Jira's working-day length for compact durations.
const minutesPerDay = 8 * 60

var (
	daysPat    = regexp.MustCompile(`(\d+)d`)
	hoursPat   = regexp.MustCompile(`(\d+)h`)
	minutesPat = regexp.MustCompile(`(\d+)m`)
)

// FormatDuration converts minutes into Jira's compact duration string
// ("1h 30m", "2h", "45m"). Zero or negative input yields the minimum
// trackable unit, "1m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "1m"
	}
	hours := minutes / 60
	remaining := minutes % 60
	switch {
	case hours > 0 && remaining > 0:
		return fmt.Sprintf("%dh %dm", hours, remaining)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", remaining)
	}
}

// ParseDuration converts a compact duration string back to minutes, summing
// day (8h), hour and minute components. The result is never below 1.
func ParseDuration(s string) int {
	total := 0
	if m := daysPat.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * minutesPerDay
	}
	if m := hoursPat.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 60
	}
	if m := minutesPat.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}
	if total < 1 {
		return 1
	}
	return total
}
