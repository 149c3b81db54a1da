package commission

import (
	"math"
	"strconv"
	"strings"
)

// ResolveHours turns a time record into a number of hours.
// A manually entered total wins when positive; otherwise both start and stop
// must parse as "HH:MM" clock times and the elapsed same-day span is used.
// A stop before start resolves to 0, never a negative or wrapped value.
func ResolveHours(t TimeRecord) float64 {
	if total := sanitize(t.TotalHours); total > 0 {
		return total
	}
	start, ok := parseClock(t.Start)
	if !ok {
		return 0
	}
	stop, ok := parseClock(t.Stop)
	if !ok {
		return 0
	}
	minutes := stop - start
	if minutes <= 0 {
		return 0
	}
	return float64(minutes) / 60
}

// parseClock parses a "HH:MM" wall-clock time into minutes since midnight.
func parseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// sanitize coerces NaN and infinities to 0 so degenerate numeric input can
// never poison downstream sums.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ruleValue normalizes a rule's configured value: NaN/Inf and negative values
// collapse to 0, percentages are held inside [0,100].
func ruleValue(rule DeductionRule) float64 {
	value := sanitize(rule.Value)
	if value < 0 {
		return 0
	}
	if rule.Kind == KindPercentage && value > 100 {
		return 100
	}
	return value
}
