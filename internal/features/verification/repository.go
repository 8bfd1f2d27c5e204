// Package verification — repository.go выполняет операции с таблицами
// completions, admin_sessions и admin_login_attempts.
// Решение по выполнению и начисление баллов — одна транзакция БД.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"droplab.ru/points-bot/internal/common"
	"droplab.ru/points-bot/internal/features/points"
)

// Repository работает с таблицами верификации.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий верификации.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Approve одобряет выполнение и начисляет баллы за задание.
//
// Одна транзакция: строка выполнения блокируется FOR UPDATE, статус
// проверяется на PENDING — повторное одобрение не даст второго начисления
// (common.ErrCompletionNotPending). Баланс и аудит-запись пишутся в той же
// транзакции, что и смена статуса.
func (r *Repository) Approve(ctx context.Context, completionID int64) (userID, awarded int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var status CompletionStatus
	err = tx.QueryRow(ctx, `
		SELECT c.status, c.user_id, t.points
		FROM completions c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.id = $1
		FOR UPDATE OF c
	`, completionID).Scan(&status, &userID, &awarded)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, common.ErrCompletionNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка загрузки выполнения: %w", err)
	}
	if !ReviewAllowed(status) {
		return 0, 0, common.ErrCompletionNotPending
	}

	_, err = tx.Exec(ctx, `
		UPDATE completions
		SET status = 'APPROVED', needs_review = FALSE, reviewed_at = NOW()
		WHERE id = $1
	`, completionID)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка одобрения выполнения: %w", err)
	}

	if err := points.ApplyTx(ctx, tx, userID, awarded, points.ReasonTaskApproved, nil, nil); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return userID, awarded, nil
}

// Reject отклоняет выполнение с причиной. Баланс не меняется,
// корректировка не создаётся.
func (r *Repository) Reject(ctx context.Context, completionID int64, reason string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var status CompletionStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM completions WHERE id = $1 FOR UPDATE
	`, completionID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrCompletionNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка загрузки выполнения: %w", err)
	}
	if !ReviewAllowed(status) {
		return common.ErrCompletionNotPending
	}

	_, err = tx.Exec(ctx, `
		UPDATE completions
		SET status = 'REJECTED', needs_review = FALSE, rejection_reason = $2, reviewed_at = NOW()
		WHERE id = $1
	`, completionID, reason)
	if err != nil {
		return fmt.Errorf("ошибка отклонения выполнения: %w", err)
	}

	return tx.Commit(ctx)
}

// ListPending возвращает ожидающие выполнения, самые рискованные — первыми.
func (r *Repository) ListPending(ctx context.Context) ([]*Completion, error) {
	query := `
		SELECT c.id, c.user_id, c.task_id, c.status, c.needs_review, c.fraud_score,
		       c.rejection_reason, c.reviewed_at, c.created_at,
		       t.title, t.points, COALESCE(u.username, '')
		FROM completions c
		JOIN tasks t ON t.id = c.task_id
		JOIN users u ON u.id = c.user_id
		WHERE c.status = 'PENDING'
		ORDER BY c.fraud_score DESC, c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения очереди проверки: %w", err)
	}
	defer rows.Close()

	var completions []*Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.TaskID, &c.Status, &c.NeedsReview, &c.FraudScore,
			&c.RejectionReason, &c.ReviewedAt, &c.CreatedAt,
			&c.TaskTitle, &c.TaskPoints, &c.Username,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования выполнения: %w", err)
		}
		completions = append(completions, &c)
	}
	return completions, rows.Err()
}

// --- Сессии и попытки входа ---

// CreateSession сохраняет новую сессию администратора.
func (r *Repository) CreateSession(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_sessions (session_token, expires_at, is_active)
		VALUES ($1, $2, TRUE)
	`, token, expiresAt)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

// SessionActive проверяет, что сессия существует, активна и не истекла.
func (r *Repository) SessionActive(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM admin_sessions
			WHERE session_token = $1 AND is_active AND expires_at > NOW()
		)
	`, token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки сессии: %w", err)
	}
	return exists, nil
}

// CountRecentAttempts возвращает число неудачных попыток входа с адреса за окно.
func (r *Repository) CountRecentAttempts(ctx context.Context, ip string, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE ip = $1 AND NOT success AND attempt_time >= $2
	`, ip, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта попыток входа: %w", err)
	}
	return count, nil
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, ip string, success bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_login_attempts (ip, success) VALUES ($1, $2)
	`, ip, success)
	return err
}
