// Package timeutil parses and formats the timestamp and duration representations of the supported formats.
// Parsing is permissive: a value which can not be parsed resolves to nil.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.9999999Z07:00",
}

// ParseTimestamp ...
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// FormatTimestamp formats t as RFC3339 with nanoseconds, nil is an empty string.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// ParseSeconds parses a floating point seconds value (JUnit, xUnit, NUnit).
func ParseSeconds(s string) *time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(normalizeSeparators(s), 64)
	if err != nil {
		return nil
	}
	return fromFloat(seconds, time.Second)
}

// normalizeSeparators rewrites a locale formatted number to the invariant form.
// A single comma without a dot is a decimal comma ("1,5"), otherwise commas group thousands ("1,234.5").
func normalizeSeparators(s string) string {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}

// fromFloat converts value in unit to a duration. Negative values and values out of the
// time.Duration range resolve to nil.
func fromFloat(value float64, unit time.Duration) *time.Duration {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil
	}
	ns := math.Round(value * float64(unit))
	if ns >= math.MaxInt64 {
		return nil
	}
	d := time.Duration(ns)
	return &d
}

// FormatSeconds formats d as seconds in the shortest form which parses back to the same duration.
func FormatSeconds(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Seconds returns d in seconds, nil is zero.
func Seconds(d *time.Duration) float64 {
	if d == nil {
		return 0
	}
	return d.Seconds()
}

// ParseTimeSpan parses the .NET TimeSpan representation ([d.]hh:mm:ss[.fffffff]) used by TRX.
func ParseTimeSpan(s string) *time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var days int64
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil
	}
	if dayAndHour := strings.SplitN(parts[0], ".", 2); len(dayAndHour) == 2 {
		d, err := strconv.ParseInt(dayAndHour[0], 10, 64)
		if err != nil {
			return nil
		}
		days = d
		parts[0] = dayAndHour[1]
	}

	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || hours < 0 {
		return nil
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || minutes < 0 || minutes > 59 {
		return nil
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return nil
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(math.Round(seconds*float64(time.Second)))
	return &d
}

// FormatTimeSpan formats d as hh:mm:ss.fffffff (100ns ticks).
func FormatTimeSpan(d *time.Duration) string {
	if d == nil {
		return ""
	}
	total := *d
	if total < 0 {
		total = 0
	}
	hours := total / time.Hour
	total -= hours * time.Hour
	minutes := total / time.Minute
	total -= minutes * time.Minute
	seconds := total / time.Second
	total -= seconds * time.Second
	ticks := total / 100
	return fmt.Sprintf("%02d:%02d:%02d.%07d", hours, minutes, seconds, ticks)
}

// ParseMillis parses a millisecond value (CTRF).
func ParseMillis(ms float64) *time.Duration {
	return fromFloat(ms, time.Millisecond)
}

// Millis returns d in milliseconds, nil is zero.
func Millis(d *time.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(*d) / float64(time.Millisecond)
}

// FromUnixMillis converts a unix epoch millisecond value, zero means unknown.
// Values which are not positive or out of the int64 range resolve to nil.
func FromUnixMillis(ms float64) *time.Time {
	if math.IsNaN(ms) || ms <= 0 || ms >= math.MaxInt64 {
		return nil
	}
	t := time.UnixMilli(int64(math.Round(ms))).UTC()
	return &t
}

// UnixMillis returns t as unix epoch milliseconds, nil is zero.
func UnixMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}

// Between returns the duration between start and end if both are known and ordered.
func Between(start, end *time.Time) *time.Duration {
	if start == nil || end == nil || end.Before(*start) {
		return nil
	}
	d := end.Sub(*start)
	return &d
}
