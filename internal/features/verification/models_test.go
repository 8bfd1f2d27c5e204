package verification

import "testing"

func TestRiskBucket(t *testing.T) {
	tests := []struct {
		score int
		want  Risk
	}{
		{score: 0, want: RiskLow},
		{score: 25, want: RiskLow},
		{score: 39, want: RiskLow},
		{score: 40, want: RiskMedium},
		{score: 59, want: RiskMedium},
		{score: 60, want: RiskHigh},
		{score: 79, want: RiskHigh},
		{score: 80, want: RiskCritical},
		{score: 100, want: RiskCritical},
	}

	for _, tt := range tests {
		if got := RiskBucket(tt.score); got != tt.want {
			t.Errorf("RiskBucket(%d) = %s, ожидалось %s", tt.score, got, tt.want)
		}
	}
}

// Решение по выполнению выносится ровно один раз: любой статус кроме
// PENDING блокирует повторное одобрение — второго начисления не будет.
func TestReviewAllowed(t *testing.T) {
	tests := []struct {
		status CompletionStatus
		want   bool
	}{
		{StatusPending, true},
		{StatusApproved, false},
		{StatusRejected, false},
		{StatusAutoApproved, false},
	}

	for _, tt := range tests {
		if got := ReviewAllowed(tt.status); got != tt.want {
			t.Errorf("ReviewAllowed(%s) = %v, ожидалось %v", tt.status, got, tt.want)
		}
	}
}
