// Package reactions реализует машину состояний реакций:
// начисление и списание баллов за реакции на контент с защитой
// от частого переключения и от накрутки.
// models.go описывает реакцию, её статусы и решения о переходах.
package reactions

import "time"

// Status — явный статус реакции вместо пары булевых флагов.
type Status string

const (
	// StatusActive — реакция стоит, баллы начислены
	StatusActive Status = "active"
	// StatusInactive — реакция снята (пользователем или сверкой), баллы списаны
	StatusInactive Status = "inactive"
)

// Action — действие входящего события реакции.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// Reaction — одна реакция пользователя на единицу контента.
// Уникальна по тройке (пользователь, контент, вид). Никогда не удаляется:
// при снятии деактивируется, при повторной установке — активируется заново.
type Reaction struct {
	ID             int64      `db:"id"`
	UserID         int64      `db:"user_id"`
	ChatID         int64      `db:"chat_id"`
	ContentID      int64      `db:"content_id"`
	Kind           string     `db:"kind"`
	Status         Status     `db:"status"`
	Points         int64      `db:"points"`
	CreatedAt      time.Time  `db:"created_at"`
	LastVerifiedAt *time.Time `db:"last_verified_at"`
	RemovedAt      *time.Time `db:"removed_at"`
}

// Event — входящее событие реакции от внешнего источника (Telegram).
type Event struct {
	TelegramUserID int64
	ChatID         int64
	ContentID      int64
	Kind           string
	Action         Action
}

// RawEvent — сырая запись журнала событий реакций.
// Журнал пополняется ДО всех проверок: даже отклонённое событие
// отражает реальное состояние источника и нужно ночной сверке.
type RawEvent struct {
	ID             int64     `db:"id"`
	TelegramUserID int64     `db:"telegram_user_id"`
	ChatID         int64     `db:"chat_id"`
	ContentID      int64     `db:"content_id"`
	Kind           string    `db:"kind"`
	Action         Action    `db:"action"`
	OccurredAt     time.Time `db:"occurred_at"`
}

// Transition — решение машины состояний для одного события.
type Transition int

const (
	// TransitionNone — переход не нужен (дубликат или снятие несуществующей реакции)
	TransitionNone Transition = iota
	// TransitionActivate — создать или реактивировать реакцию с начислением
	TransitionActivate
	// TransitionDeactivate — деактивировать реакцию со списанием
	TransitionDeactivate
)

// DecideAdded возвращает переход для события «реакция добавлена».
// Повторное добавление поверх активной реакции — no-op.
func DecideAdded(existing *Reaction) Transition {
	if existing != nil && existing.Status == StatusActive {
		return TransitionNone
	}
	return TransitionActivate
}

// DecideRemoved возвращает переход для события «реакция убрана».
// Снятие отсутствующей или уже неактивной реакции — no-op.
func DecideRemoved(existing *Reaction) Transition {
	if existing == nil || existing.Status == StatusInactive {
		return TransitionNone
	}
	return TransitionDeactivate
}

// ResultCode — исход обработки события. Отказы — это данные, а не ошибки:
// вызывающий код обязан ветвиться по коду, а не ловить исключения.
type ResultCode string

const (
	ResultAdded                ResultCode = "added"
	ResultRemoved              ResultCode = "removed"
	ResultAlreadyExists        ResultCode = "already_exists"
	ResultNotFound             ResultCode = "not_found"
	ResultUserNotFound         ResultCode = "user_not_found"
	ResultCooldownActive       ResultCode = "cooldown_active"
	ResultManipulationDetected ResultCode = "manipulation_detected"
)

// Result — структурированный исход обработки одного события.
type Result struct {
	Success      bool
	Code         ResultCode
	PointsChange int64
}
