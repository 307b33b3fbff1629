package dnd

import (
	"math"
	"time"
)

// isoMillis matches the ISO-8601 form browsers produce for dates (UTC, millisecond precision).
const isoMillis = "2006-01-02T15:04:05.000Z"

// Dates outside this range have no valid ISO representation.
const maxDateMillis = 8.64e15

// ResolveTimestamp converts a plot-area x offset into an ISO-8601 timestamp by
// going pixel -> linear -> milliseconds. It reports false instead of failing when
// the axis is missing, is not a date axis, or either stage cannot produce a value.
func ResolveTimestamp(axis *TimeAxis, px float64) (string, bool) {
	if axis == nil || axis.Type != AxisTypeDate {
		return "", false
	}
	if axis.PixelToLinear == nil || axis.LinearToMillis == nil {
		return "", false
	}
	lin, ok := callAxis(func() (float64, error) { return axis.PixelToLinear(px) })
	if !ok {
		return "", false
	}
	ms, ok := callAxis(func() (float64, error) { return axis.LinearToMillis(lin) })
	if !ok {
		return "", false
	}
	return FormatISO(ms)
}

// FormatISO formats epoch milliseconds the way a browser Date does. Fractional
// milliseconds are truncated toward zero.
func FormatISO(ms float64) (string, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxDateMillis {
		return "", false
	}
	t := time.UnixMilli(int64(math.Trunc(ms))).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return "", false
	}
	return t.Format(isoMillis), true
}

// ResolveCategory returns the category whose pixel position is nearest to py.
// On equal distance the category that comes first in axis order wins.
func ResolveCategory(axis *CategoryAxis, py float64) (string, bool) {
	if axis == nil || len(axis.Categories) == 0 || axis.CategoryToPixel == nil {
		return "", false
	}
	best := ""
	bestDist := math.Inf(1)
	found := false
	for _, label := range axis.Categories {
		pos, ok := callAxis(func() (float64, error) { return axis.CategoryToPixel(label) })
		if !ok {
			continue
		}
		if d := math.Abs(pos - py); d < bestDist {
			best, bestDist, found = label, d, true
		}
	}
	return best, found
}

// callAxis runs one chart-provided transform, treating errors, panics and
// non-finite results as "no value".
func callAxis(f func() (float64, error)) (v float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = 0, false
		}
	}()
	v, err := f()
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
