package reactions

import (
	"testing"
	"time"

	"droplab.ru/points-bot/internal/features/points"
)

func adjustmentsWithReasons(reasons ...string) []*points.PointAdjustment {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*points.PointAdjustment, 0, len(reasons))
	for i, reason := range reasons {
		out = append(out, &points.PointAdjustment{
			ID:        int64(i + 1),
			Reason:    reason,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestCountReasonFlips(t *testing.T) {
	add := points.ReasonReactionAdd
	remove := points.ReasonReactionRemove

	tests := []struct {
		name    string
		reasons []string
		want    int
	}{
		{name: "пустая история", reasons: nil, want: 0},
		{name: "одиночное начисление", reasons: []string{add}, want: 0},
		{name: "много начислений без снятий", reasons: []string{add, add, add, add, add}, want: 0},
		{name: "один цикл", reasons: []string{add, remove}, want: 1},
		{name: "три смены", reasons: []string{add, remove, add, remove}, want: 3},
		{name: "четыре смены", reasons: []string{add, remove, add, remove, add}, want: 4},
		{name: "повторы внутри серий не считаются", reasons: []string{add, add, remove, remove, add}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountReasonFlips(adjustmentsWithReasons(tt.reasons...))
			if got != tt.want {
				t.Errorf("CountReasonFlips(%v) = %d, ожидалось %d", tt.reasons, got, tt.want)
			}
		})
	}
}

// Порог детектора: строго больше 3 смен. Ровно 4 смены — накрутка,
// 3 и меньше — нет.
func TestManipulationThreshold(t *testing.T) {
	add := points.ReasonReactionAdd
	remove := points.ReasonReactionRemove
	threshold := 3

	fourFlips := adjustmentsWithReasons(add, remove, add, remove, add)
	if CountReasonFlips(fourFlips) <= threshold {
		t.Error("4 смены причины должны превышать порог")
	}

	threeFlips := adjustmentsWithReasons(add, remove, add, remove)
	if CountReasonFlips(threeFlips) > threshold {
		t.Error("3 смены причины не должны превышать порог")
	}
}
