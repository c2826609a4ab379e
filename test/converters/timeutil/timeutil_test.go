package timeutil

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  *time.Time
	}{
		{value: "2024-03-01T10:00:00Z", want: &want},
		{value: "2024-03-01T11:00:00+01:00", want: &want},
		{value: "2024-03-01T10:00:00.0000000", want: &want},
		{value: "2024-03-01T10:00:00", want: &want},
		{value: "2024-03-01 10:00:00Z", want: &want},
		{value: " 2024-03-01 10:00:00 ", want: &want},
		{value: "", want: nil},
		{value: "03/01/2024 10:00:00", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := ParseTimestamp(tt.value)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 500, time.UTC)
	assert.Equal(t, "2024-03-01T10:00:00.0000005Z", FormatTimestamp(&ts))
	assert.Equal(t, "", FormatTimestamp(nil))

	got := ParseTimestamp(FormatTimestamp(&ts))
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		value string
		want  *time.Duration
	}{
		{value: "1", want: durationPtr(time.Second)},
		{value: "0.012", want: durationPtr(12 * time.Millisecond)},
		{value: "1,234.5", want: durationPtr(1234500 * time.Millisecond)},
		{value: "1,5", want: durationPtr(1500 * time.Millisecond)},
		{value: "1,234,567", want: durationPtr(1234567 * time.Second)},
		{value: "1e20", want: nil},
		{value: "9223372037", want: nil},
		{value: "9223372036", want: durationPtr(9223372036 * time.Second)},
		{value: "0", want: durationPtr(0)},
		{value: "", want: nil},
		{value: "-1", want: nil},
		{value: "NaN", want: nil},
		{value: "fast", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeconds(tt.value))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "1.5", FormatSeconds(durationPtr(1500*time.Millisecond)))
	assert.Equal(t, "0", FormatSeconds(durationPtr(0)))
	assert.Equal(t, "", FormatSeconds(nil))
	assert.Equal(t, 0.25, Seconds(durationPtr(250*time.Millisecond)))
	assert.Equal(t, 0.0, Seconds(nil))

	d := 1234567891 * time.Nanosecond
	assert.Equal(t, "1.234567891", FormatSeconds(&d))
	assert.Equal(t, &d, ParseSeconds(FormatSeconds(&d)))
}

func TestParseTimeSpan(t *testing.T) {
	tests := []struct {
		value string
		want  *time.Duration
	}{
		{value: "00:00:01.5000000", want: durationPtr(1500 * time.Millisecond)},
		{value: "01:02:03", want: durationPtr(time.Hour + 2*time.Minute + 3*time.Second)},
		{value: "1.00:00:00", want: durationPtr(24 * time.Hour)},
		{value: "00:00:00.0000001", want: durationPtr(100 * time.Nanosecond)},
		{value: "", want: nil},
		{value: "00:60:00", want: nil},
		{value: "00:00:60", want: nil},
		{value: "1:2", want: nil},
		{value: "x.00:00:00", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimeSpan(tt.value))
		})
	}
}

func TestFormatTimeSpan(t *testing.T) {
	assert.Equal(t, "00:00:01.5000000", FormatTimeSpan(durationPtr(1500*time.Millisecond)))
	assert.Equal(t, "25:00:00.0000000", FormatTimeSpan(durationPtr(25*time.Hour)))
	assert.Equal(t, "00:00:00.0000000", FormatTimeSpan(durationPtr(-time.Second)))
	assert.Equal(t, "", FormatTimeSpan(nil))

	d := 3*time.Hour + 4*time.Minute + 5*time.Second + 600*time.Nanosecond
	assert.Equal(t, &d, ParseTimeSpan(FormatTimeSpan(&d)))
}

func TestMillis(t *testing.T) {
	assert.Equal(t, durationPtr(3500*time.Microsecond), ParseMillis(3.5))
	assert.Nil(t, ParseMillis(-1))
	assert.Nil(t, ParseMillis(1e20))
	assert.Nil(t, ParseMillis(math.Inf(1)))
	assert.Equal(t, 3.5, Millis(durationPtr(3500*time.Microsecond)))
	assert.Equal(t, 0.0, Millis(nil))
}

func TestUnixMillis(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(1709287200000), UnixMillis(&ts))
	assert.Equal(t, int64(0), UnixMillis(nil))

	got := FromUnixMillis(1709287200000)
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))
	assert.Nil(t, FromUnixMillis(0))
	assert.Nil(t, FromUnixMillis(-1))
	assert.Nil(t, FromUnixMillis(1e20))
	assert.Nil(t, FromUnixMillis(math.NaN()))

	got = FromUnixMillis(1.7e12)
	require.NotNil(t, got)
	assert.True(t, time.UnixMilli(1700000000000).Equal(*got))
}

func TestBetween(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	assert.Equal(t, durationPtr(5*time.Minute), Between(&start, &end))
	assert.Nil(t, Between(&end, &start))
	assert.Nil(t, Between(nil, &end))
	assert.Nil(t, Between(&start, nil))
}
