// Package notifications — repository.go добавляет записи в таблицу notifications.
package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей notifications.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий уведомлений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет уведомление.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (user_id, type, title, message, points_change, show_on_login)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.UserID, n.Type, n.Title, n.Message, n.PointsChange, n.ShowOnLogin)
	if err != nil {
		return fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return nil
}
