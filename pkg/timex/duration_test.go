package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"10d", 10 * Day},
		{"30d", 30 * Day},
		{"0s", 0},
		{"1500", 1500 * time.Millisecond},
		{"  5m ", 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Malformed(t *testing.T) {
	tests := []string{"", "d", "10x", "5mm", "m5", "-5m", "-100", "five minutes", "1.5h"}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			require.Error(t, err)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{10 * Day, "10d"},
		{30 * Day, "30d"},
		{2 * time.Hour, "2h"},
		{5 * time.Minute, "5m"},
		{45 * time.Second, "45s"},
		{1500 * time.Millisecond, "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"30d", "10d", "5m", "2h", "45s"} {
		d, err := ParseDuration(s)
		require.NoError(t, err)
		require.Equal(t, s, FormatDuration(d))
	}
}
