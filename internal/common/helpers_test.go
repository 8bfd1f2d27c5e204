package common

import "testing"

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "балл"},
		{2, "балла"},
		{4, "балла"},
		{5, "баллов"},
		{11, "баллов"},
		{14, "баллов"},
		{21, "балл"},
		{22, "балла"},
		{100, "баллов"},
		{111, "баллов"},
		{0, "баллов"},
		{-3, "балла"},
	}

	for _, tt := range tests {
		if got := PluralizePoints(tt.n); got != tt.want {
			t.Errorf("PluralizePoints(%d) = %q, ожидалось %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatSignedPoints(t *testing.T) {
	if got := FormatSignedPoints(20); got != "+20 баллов" {
		t.Errorf("FormatSignedPoints(20) = %q", got)
	}
	if got := FormatSignedPoints(-20); got != "-20 баллов" {
		t.Errorf("FormatSignedPoints(-20) = %q", got)
	}
	if got := FormatSignedPoints(1); got != "+1 балл" {
		t.Errorf("FormatSignedPoints(1) = %q", got)
	}
}
