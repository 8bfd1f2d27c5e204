package reactions

import "testing"

func TestDecideAdded(t *testing.T) {
	tests := []struct {
		name     string
		existing *Reaction
		want     Transition
	}{
		{name: "строки нет — активируем", existing: nil, want: TransitionActivate},
		{name: "уже активна — дубликат", existing: &Reaction{Status: StatusActive}, want: TransitionNone},
		{name: "была снята — реактивируем", existing: &Reaction{Status: StatusInactive}, want: TransitionActivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideAdded(tt.existing); got != tt.want {
				t.Errorf("DecideAdded = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

func TestDecideRemoved(t *testing.T) {
	tests := []struct {
		name     string
		existing *Reaction
		want     Transition
	}{
		{name: "строки нет — снимать нечего", existing: nil, want: TransitionNone},
		{name: "уже снята — no-op", existing: &Reaction{Status: StatusInactive}, want: TransitionNone},
		{name: "активна — деактивируем", existing: &Reaction{Status: StatusActive}, want: TransitionDeactivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideRemoved(tt.existing); got != tt.want {
				t.Errorf("DecideRemoved = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// Цепочка переключений: NONE → ACTIVE → INACTIVE → ACTIVE.
// Дубликаты на каждом шаге — no-op.
func TestToggleChain(t *testing.T) {
	if DecideAdded(nil) != TransitionActivate {
		t.Fatal("первое добавление должно активировать")
	}

	active := &Reaction{Status: StatusActive}
	if DecideAdded(active) != TransitionNone {
		t.Error("повторное добавление поверх активной — no-op")
	}
	if DecideRemoved(active) != TransitionDeactivate {
		t.Error("снятие активной должно деактивировать")
	}

	inactive := &Reaction{Status: StatusInactive}
	if DecideRemoved(inactive) != TransitionNone {
		t.Error("повторное снятие — no-op")
	}
	if DecideAdded(inactive) != TransitionActivate {
		t.Error("добавление после снятия должно реактивировать")
	}
}
