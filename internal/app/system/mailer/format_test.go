package mailer

import (
	"testing"
	"time"
)

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Minute, "1 minute"},
		{30 * time.Minute, "30 minutes"},
		{time.Hour, "1 hour"},
		{90 * time.Minute, "1 hour"},
		{24 * time.Hour, "24 hours"},
	}
	for _, tt := range tests {
		if got := FormatExpiry(tt.d); got != tt.want {
			t.Errorf("FormatExpiry(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
