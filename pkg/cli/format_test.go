package cli

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{450 * time.Millisecond, "450ms"},
		{3 * time.Second, "3.0s"},
		{90 * time.Second, "1m30.0s"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1h2m5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{48 * 1024, "48.00 KB"},
		{3 << 20, "3.00 MB"},
		{5 << 30, "5.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatBitrate(t *testing.T) {
	if got := FormatBitrate(48000, 3*time.Second); got != "128 kbps" {
		t.Errorf("FormatBitrate = %q", got)
	}
	if got := FormatBitrate(10, 0); got != "-" {
		t.Errorf("FormatBitrate(0 duration) = %q", got)
	}
}
