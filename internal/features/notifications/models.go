// Package notifications реализует побочный канал уведомлений пользователя.
// models.go описывает структуру уведомления.
package notifications

import "time"

// Типы уведомлений движка баллов.
const (
	TypePointsGained = "points_gained"
	TypePointsLost   = "points_lost"
	TypeWarning      = "warning"
)

// Notification — запись уведомления для пользователя.
// Создаётся движком как побочный эффект, читается и гасится другим
// интерфейсом платформы; движок её больше никогда не трогает.
type Notification struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Type         string    `db:"type"`
	Title        string    `db:"title"`
	Message      string    `db:"message"`
	PointsChange int64     `db:"points_change"`
	ShowOnLogin  bool      `db:"show_on_login"`
	CreatedAt    time.Time `db:"created_at"`
}
