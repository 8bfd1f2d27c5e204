// Package verification реализует ручную проверку выполнений заданий:
// одобрение/отклонение админом и классификацию фрод-риска.
// models.go описывает выполнение задания, его статусы и корзины риска.
package verification

import "time"

// CompletionStatus — статус выполнения задания.
// Переход из PENDING в APPROVED/REJECTED происходит ровно один раз.
type CompletionStatus string

const (
	StatusPending      CompletionStatus = "PENDING"
	StatusApproved     CompletionStatus = "APPROVED"
	StatusRejected     CompletionStatus = "REJECTED"
	StatusAutoApproved CompletionStatus = "AUTO_APPROVED"
)

// ReviewAllowed сообщает, можно ли вынести решение по выполнению.
// Решение выносится ровно один раз: повторное одобрение упирается сюда
// и не даёт второго начисления.
func ReviewAllowed(status CompletionStatus) bool {
	return status == StatusPending
}

// Completion — выполнение задания пользователем, ждущее решения.
// Загружается вместе с заданием (стоимость в баллах) и пользователем.
type Completion struct {
	ID              int64            `db:"id"`
	UserID          int64            `db:"user_id"`
	TaskID          int64            `db:"task_id"`
	Status          CompletionStatus `db:"status"`
	NeedsReview     bool             `db:"needs_review"`
	FraudScore      int              `db:"fraud_score"`
	RejectionReason *string          `db:"rejection_reason"`
	ReviewedAt      *time.Time       `db:"reviewed_at"`
	CreatedAt       time.Time        `db:"created_at"`

	TaskTitle  string `db:"task_title"`
	TaskPoints int64  `db:"task_points"`
	Username   string `db:"username"`
}

// Risk — корзина фрод-риска для приоритизации ручной проверки.
// Классификация информационная, решений она не принимает.
type Risk string

const (
	RiskLow      Risk = "LOW"
	RiskMedium   Risk = "MEDIUM"
	RiskHigh     Risk = "HIGH"
	RiskCritical Risk = "CRITICAL"
)

// RiskBucket — чистая пороговая функция: балл 0–100 → корзина риска.
func RiskBucket(fraudScore int) Risk {
	switch {
	case fraudScore >= 80:
		return RiskCritical
	case fraudScore >= 60:
		return RiskHigh
	case fraudScore >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

