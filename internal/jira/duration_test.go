package jira

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "1m"},
		{-5, "1m"},
		{1, "1m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
		{125, "2h 5m"},
		{600, "10h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1m", 1},
		{"45m", 45},
		{"1h", 60},
		{"1h 30m", 90},
		{"2h 5m", 125},
		{"1d", 480},
		{"1d 2h 15m", 615},
		{"", 1},
		{"garbage", 1},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in); got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for minutes := 1; minutes <= 1000; minutes++ {
		encoded := FormatDuration(minutes)
		if got := ParseDuration(encoded); got != minutes {
			t.Fatalf("ParseDuration(FormatDuration(%d)) = %d via %q", minutes, got, encoded)
		}
	}
}
