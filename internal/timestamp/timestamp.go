// Package timestamp parses and formats the HH:MM:SS[.mmm] call timestamps used by
// transcripts, chat logs and agenda items, and maps transcript time onto video time.
package timestamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts "HH:MM:SS" or "HH:MM:SS.mmm" into seconds from call start.
// Anything that is not exactly three numeric components yields 0.
func Parse(ts string) float64 {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0
	}

	sign := 1.0
	if strings.HasPrefix(ts, "-") {
		sign = -1
		ts = ts[1:]
	}

	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}

	h, ok := component(parts[0])
	if !ok {
		return 0
	}
	m, ok := component(parts[1])
	if !ok {
		return 0
	}
	s, ok := component(parts[2])
	if !ok {
		return 0
	}

	return sign * (h*3600 + m*60 + s)
}

func component(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "eE+-") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Format renders seconds as HH:MM:SS, truncating any fractional part.
// Negative values keep a leading '-'.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00:00"
	}

	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	total := int64(math.Trunc(seconds))
	if total == 0 {
		sign = ""
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

// StripFraction drops a ".mmm" suffix without rounding it into the seconds field.
func StripFraction(ts string) string {
	if i := strings.IndexByte(ts, '.'); i >= 0 {
		return ts[:i]
	}
	return ts
}

// Normalize re-formats ts as HH:MM:SS. Malformed input becomes "00:00:00".
func Normalize(ts string) string {
	return Format(Parse(ts))
}
