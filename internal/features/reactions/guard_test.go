package reactions

import (
	"testing"
	"time"
)

func TestWithinCooldown(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	tests := []struct {
		name string
		last time.Time
		want bool
	}{
		{name: "только что", last: now.Add(-time.Second), want: true},
		{name: "внутри окна", last: now.Add(-59 * time.Minute), want: true},
		{name: "ровно на границе окна", last: now.Add(-time.Hour), want: false},
		{name: "после окна", last: now.Add(-61 * time.Minute), want: false},
		{name: "давно", last: now.Add(-24 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinCooldown(tt.last, now, window); got != tt.want {
				t.Errorf("WithinCooldown(%v) = %v, ожидалось %v", tt.last, got, tt.want)
			}
		})
	}
}
