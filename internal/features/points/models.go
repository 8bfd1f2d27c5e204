// Package points реализует леджер баллов: баланс пользователя и
// неизменяемый журнал корректировок.
// models.go описывает структуры пользователя и корректировки баллов.
package points

import "time"

// Причины корректировок баллов. Журнал корректировок — источник истины
// для детектора накрутки, поэтому причины фиксированы.
const (
	ReasonReactionAdd     = "reaction_add"     // начисление за добавленную реакцию
	ReasonReactionRemove  = "reaction_remove"  // списание за убранную реакцию
	ReasonReconcileRemove = "reconcile_remove" // списание по итогам ночной сверки
	ReasonTaskApproved    = "task_approved"    // начисление за одобренное задание
)

// User — участник платформы с балансом баллов.
// Баланс меняется ТОЛЬКО через транзакцию вместе с записью корректировки.
type User struct {
	ID          int64     `db:"id"`
	TelegramID  int64     `db:"telegram_id"`
	Username    string    `db:"username"`
	FirstName   string    `db:"first_name"`
	TotalPoints int64     `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// PointAdjustment — одна подписанная корректировка баланса.
// Записи только добавляются, никогда не изменяются и не удаляются.
type PointAdjustment struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	ContentID  *int64    `db:"content_id"`  // NULL для корректировок не по реакциям
	ReactionID *int64    `db:"reaction_id"` // ссылка на породившую реакцию, если есть
	Amount     int64     `db:"amount"`
	Reason     string    `db:"reason"`
	CreatedAt  time.Time `db:"created_at"`
}
