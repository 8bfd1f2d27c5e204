// Package points — repository.go выполняет операции с таблицами users и point_adjustments.
// Все операции, меняющие баланс, выполняются в транзакциях БД вместе
// с записью корректировки — частичное применение невозможно.
package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
)

// Repository работает с таблицами users и point_adjustments.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий баллов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ResolveByTelegramID находит участника платформы по Telegram ID.
// Возвращает common.ErrUserNotFound, если на платформе нет такого аккаунта.
func (r *Repository) ResolveByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	query := `
		SELECT id, telegram_id, COALESCE(username, ''), first_name, total_points, created_at, updated_at
		FROM users WHERE telegram_id = $1
	`
	var u User
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.TotalPoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	return &u, nil
}

// Balance возвращает текущий баланс пользователя.
func (r *Repository) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT total_points FROM users WHERE id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// LastAdjustment возвращает самую свежую корректировку по паре (пользователь, контент).
// Если корректировок не было — возвращает (nil, nil).
func (r *Repository) LastAdjustment(ctx context.Context, userID, contentID int64) (*PointAdjustment, error) {
	query := `
		SELECT id, user_id, content_id, reaction_id, amount, reason, created_at
		FROM point_adjustments
		WHERE user_id = $1 AND content_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var a PointAdjustment
	err := r.db.QueryRow(ctx, query, userID, contentID).Scan(
		&a.ID, &a.UserID, &a.ContentID, &a.ReactionID, &a.Amount, &a.Reason, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения последней корректировки: %w", err)
	}
	return &a, nil
}

// AdjustmentsSince возвращает корректировки по паре (пользователь, контент)
// начиная с указанного момента, в хронологическом порядке.
// Порядок важен: детектор накрутки считает смены причины между соседними записями.
func (r *Repository) AdjustmentsSince(ctx context.Context, userID, contentID int64, since time.Time) ([]*PointAdjustment, error) {
	query := `
		SELECT id, user_id, content_id, reaction_id, amount, reason, created_at
		FROM point_adjustments
		WHERE user_id = $1 AND content_id = $2 AND created_at >= $3
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID, contentID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения корректировок: %w", err)
	}
	defer rows.Close()

	var adjustments []*PointAdjustment
	for rows.Next() {
		var a PointAdjustment
		if err := rows.Scan(&a.ID, &a.UserID, &a.ContentID, &a.ReactionID, &a.Amount, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования корректировки: %w", err)
		}
		adjustments = append(adjustments, &a)
	}
	return adjustments, rows.Err()
}

// ApplyTx применяет одну корректировку баланса внутри ЧУЖОЙ транзакции.
// Используется репозиториями реакций и верификации, чтобы изменение их строк,
// обновление баланса и аудит-запись были одной атомарной операцией.
//
// Баланс НЕ ограничивается нулём снизу: аудит-запись фиксирует полную
// подписанную сумму, и сумма всех корректировок обязана сходиться с балансом.
func ApplyTx(ctx context.Context, tx pgx.Tx, userID, amount int64, reason string, contentID, reactionID *int64) error {
	var newBalance int64
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET total_points = total_points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING total_points
	`, userID, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	if newBalance < 0 {
		// Продуктовое решение: отрицательный баланс допустим,
		// иначе сумма корректировок перестанет сходиться с балансом.
		log.WithFields(log.Fields{
			"user_id": userID,
			"balance": newBalance,
		}).Warn("Баланс пользователя ушёл в минус")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO point_adjustments (user_id, content_id, reaction_id, amount, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, contentID, reactionID, amount, reason)
	if err != nil {
		return fmt.Errorf("ошибка записи корректировки: %w", err)
	}
	return nil
}

// Audit возвращает сумму всех корректировок и текущий баланс пользователя.
// Инвариант леджера: оба числа обязаны совпадать.
func (r *Repository) Audit(ctx context.Context, userID int64) (sum int64, balance int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(a.amount), 0), u.total_points
		FROM users u
		LEFT JOIN point_adjustments a ON a.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.total_points
	`, userID).Scan(&sum, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, common.ErrUserNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка аудита баланса: %w", err)
	}
	return sum, balance, nil
}
