// Package demand models relative travel demand over the day for Manhattan's
// congestion relief zone: a piecewise-linear hourly curve calibrated to
// commuter patterns, a day-of-week modifier, and the peak-period rule used by
// the toll schedule.
package demand

import "strings"

// breakpoint anchors the demand curve at an hour of day. Segments between
// anchors are interpolated linearly, so the curve is continuous everywhere,
// and every anchor is positive, so the factor never reaches zero.
type breakpoint struct {
	hour   float64
	factor float64
}

// curve covers [0,24]. The first and last anchors share a value so the curve
// is continuous across midnight.
var curve = []breakpoint{
	{0, 0.30},  // overnight low
	{5, 0.30},  // holds until the morning build-up
	{7, 1.80},  // morning rush
	{9, 1.80},
	{11, 1.30}, // midday plateau
	{15, 1.30},
	{17, 2.00}, // evening rush
	{19, 2.00},
	{24, 0.30}, // decline back to the overnight low
}

// HourlyFactor returns the demand multiplier for a time of day. Minutes
// interpolate linearly within the hour. The result is strictly positive and
// continuous across every hour boundary, including midnight.
func HourlyFactor(hour, minute int) float64 {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}
	if minute < 0 {
		minute = 0
	}
	if minute > 59 {
		minute = 59
	}

	t := float64(hour) + float64(minute)/60.0
	for i := 1; i < len(curve); i++ {
		if t <= curve[i].hour {
			prev, next := curve[i-1], curve[i]
			span := next.hour - prev.hour
			frac := (t - prev.hour) / span
			return prev.factor + frac*(next.factor-prev.factor)
		}
	}
	return curve[len(curve)-1].factor
}

// DayFactor returns the day-category modifier applied to vehicular volume
// synthesis. It does not apply to the subway ridership fallback, whose station
// base table already encodes average-day ridership.
func DayFactor(category string) float64 {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "weekday", "weekdays":
		return 1.0
	case "saturday", "sunday", "weekend", "weekends":
		return 0.7
	default:
		return 0.85
	}
}

// IsPeak reports whether an hour falls in a tolling peak period. Both bounds
// of each window are inclusive.
func IsPeak(hour int) bool {
	return (hour >= 7 && hour <= 10) || (hour >= 16 && hour <= 19)
}
