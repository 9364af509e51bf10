package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CallDateLayout is the date format used in call keys ("2025-01-16").
const CallDateLayout = "2006-01-02"

// TimeFilter holds optional call-date bounds for listing cached calls.
type TimeFilter struct {
	Since *time.Time
	Until *time.Time
}

// ParseTimeFilter parses since/until strings into a TimeFilter.
// Returns nil if both are empty.
func ParseTimeFilter(sinceStr, untilStr string) (*TimeFilter, error) {
	return parseTimeFilterAt(sinceStr, untilStr, time.Now().UTC())
}

func parseTimeFilterAt(sinceStr, untilStr string, now time.Time) (*TimeFilter, error) {
	if sinceStr == "" && untilStr == "" {
		return nil, nil
	}

	tf := &TimeFilter{}

	if sinceStr != "" {
		t, err := parseDateArg(sinceStr, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --since value %q: %w", sinceStr, err)
		}
		tf.Since = &t
	}

	if untilStr != "" {
		t, err := parseDateArg(untilStr, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --until value %q: %w", untilStr, err)
		}
		tf.Until = &t
	}

	if tf.Since != nil && tf.Until != nil && tf.Until.Before(*tf.Since) {
		return nil, fmt.Errorf("--until %s is before --since %s", untilStr, sinceStr)
	}

	return tf, nil
}

// Contains reports whether a call dated date (CallDateLayout) falls inside the bounds.
// Undated or malformed dates only pass an empty filter.
func (tf *TimeFilter) Contains(date string) bool {
	if tf == nil || (tf.Since == nil && tf.Until == nil) {
		return true
	}
	d, err := time.Parse(CallDateLayout, date)
	if err != nil {
		return false
	}
	if tf.Since != nil && d.Before(truncateDay(*tf.Since)) {
		return false
	}
	if tf.Until != nil && d.After(*tf.Until) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDateArg accepts a relative age ("3d", "2w", "6m", "1y") or an absolute date.
func parseDateArg(s string, now time.Time) (time.Time, error) {
	if t, ok := parseRelativeAge(s, now); ok {
		return t, nil
	}

	for _, f := range []string{CallDateLayout, "2006-01", time.RFC3339} {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("expected relative age (3d, 2w, 6m, 1y) or date (2006-01-02, 2006-01, RFC3339)")
}

// parseRelativeAge handles suffixes: d (days), w (weeks), m (months), y (years).
func parseRelativeAge(s string, now time.Time) (time.Time, bool) {
	if len(s) < 2 {
		return time.Time{}, false
	}

	suffix := s[len(s)-1]
	n, err := strconv.Atoi(strings.TrimSpace(s[:len(s)-1]))
	if err != nil || n <= 0 {
		return time.Time{}, false
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -n), true
	case 'w':
		return now.AddDate(0, 0, -7*n), true
	case 'm':
		return now.AddDate(0, -n, 0), true
	case 'y':
		return now.AddDate(-n, 0, 0), true
	default:
		return time.Time{}, false
	}
}
