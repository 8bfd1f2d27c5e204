// Package reactions — repository.go выполняет операции с таблицами
// reactions и reaction_events.
// Активация и деактивация меняют строку реакции, баланс и журнал
// корректировок в ОДНОЙ транзакции БД.
package reactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"droplab.ru/points-bot/internal/features/points"
)

// Repository работает с таблицами reactions и reaction_events.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий реакций.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByKey возвращает реакцию по уникальной тройке (пользователь, контент, вид).
// Если строки нет — возвращает (nil, nil).
func (r *Repository) GetByKey(ctx context.Context, userID, contentID int64, kind string) (*Reaction, error) {
	query := `
		SELECT id, user_id, chat_id, content_id, kind, status, points,
		       created_at, last_verified_at, removed_at
		FROM reactions
		WHERE user_id = $1 AND content_id = $2 AND kind = $3
	`
	var re Reaction
	err := r.db.QueryRow(ctx, query, userID, contentID, kind).Scan(
		&re.ID, &re.UserID, &re.ChatID, &re.ContentID, &re.Kind, &re.Status,
		&re.Points, &re.CreatedAt, &re.LastVerifiedAt, &re.RemovedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска реакции: %w", err)
	}
	return &re, nil
}

// ActivateWithAward создаёт или реактивирует реакцию и начисляет баллы.
// Одна транзакция: upsert строки реакции + обновление баланса + корректировка.
func (r *Repository) ActivateWithAward(ctx context.Context, userID, chatID, contentID int64, kind string, award int64) (*Reaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Upsert: повторная установка реактивирует существующую строку.
	// created_at при этом обновляется: окно ночной сверки считается
	// от последней активации, иначе реактивированная старая реакция
	// выпадает из сверки навсегда
	var re Reaction
	err = tx.QueryRow(ctx, `
		INSERT INTO reactions (user_id, chat_id, content_id, kind, status, points)
		VALUES ($1, $2, $3, $4, 'active', $5)
		ON CONFLICT (user_id, content_id, kind) DO UPDATE
		SET status = 'active', points = EXCLUDED.points, removed_at = NULL,
		    created_at = NOW()
		RETURNING id, user_id, chat_id, content_id, kind, status, points,
		          created_at, last_verified_at, removed_at
	`, userID, chatID, contentID, kind, award).Scan(
		&re.ID, &re.UserID, &re.ChatID, &re.ContentID, &re.Kind, &re.Status,
		&re.Points, &re.CreatedAt, &re.LastVerifiedAt, &re.RemovedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка активации реакции: %w", err)
	}

	if err := points.ApplyTx(ctx, tx, userID, award, points.ReasonReactionAdd, &contentID, &re.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &re, nil
}

// DeactivateWithDeduction деактивирует реакцию и списывает начисленные за неё баллы.
// Причина передаётся вызывающим: снятие пользователем или ночная сверка.
// Одна транзакция: обновление строки реакции + обновление баланса + корректировка.
func (r *Repository) DeactivateWithDeduction(ctx context.Context, re *Reaction, reason string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Меняем статус только у активной строки: повторная деактивация — no-op,
	// и списание в этом случае не выполняется
	tag, err := tx.Exec(ctx, `
		UPDATE reactions
		SET status = 'inactive', removed_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, re.ID)
	if err != nil {
		return fmt.Errorf("ошибка деактивации реакции: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if err := points.ApplyTx(ctx, tx, re.UserID, -re.Points, reason, &re.ContentID, &re.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TouchVerified обновляет отметку последней сверки без изменения леджера.
func (r *Repository) TouchVerified(ctx context.Context, reactionID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reactions SET last_verified_at = NOW() WHERE id = $1
	`, reactionID)
	if err != nil {
		return fmt.Errorf("ошибка отметки сверки: %w", err)
	}
	return nil
}

// ListActiveSince возвращает активные реакции, последняя активация которых
// была после указанного момента (created_at обновляется при реактивации).
// Используется ночной сверкой; фильтр по active делает её идемпотентной.
func (r *Repository) ListActiveSince(ctx context.Context, since time.Time) ([]*Reaction, error) {
	query := `
		SELECT id, user_id, chat_id, content_id, kind, status, points,
		       created_at, last_verified_at, removed_at
		FROM reactions
		WHERE status = 'active' AND created_at >= $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения реакций для сверки: %w", err)
	}
	defer rows.Close()

	var reactions []*Reaction
	for rows.Next() {
		var re Reaction
		if err := rows.Scan(
			&re.ID, &re.UserID, &re.ChatID, &re.ContentID, &re.Kind, &re.Status,
			&re.Points, &re.CreatedAt, &re.LastVerifiedAt, &re.RemovedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования реакции: %w", err)
		}
		reactions = append(reactions, &re)
	}
	return reactions, rows.Err()
}

// JournalEvent записывает сырое событие реакции в журнал.
// Вызывается ДО проверок кулдауна и накрутки: журнал отражает источник,
// а не решения движка.
func (r *Repository) JournalEvent(ctx context.Context, e Event) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reaction_events (telegram_user_id, chat_id, content_id, kind, action)
		VALUES ($1, $2, $3, $4, $5)
	`, e.TelegramUserID, e.ChatID, e.ContentID, e.Kind, string(e.Action))
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал событий: %w", err)
	}
	return nil
}

// LatestEventAction возвращает действие последнего события журнала
// по ключу реакции. Если событий нет — found=false.
func (r *Repository) LatestEventAction(ctx context.Context, re *Reaction) (action Action, found bool, err error) {
	var raw string
	err = r.db.QueryRow(ctx, `
		SELECT e.action
		FROM reaction_events e
		JOIN users u ON u.telegram_id = e.telegram_user_id
		WHERE u.id = $1 AND e.content_id = $2 AND e.kind = $3
		ORDER BY e.occurred_at DESC, e.id DESC
		LIMIT 1
	`, re.UserID, re.ContentID, re.Kind).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения журнала событий: %w", err)
	}
	return Action(raw), true, nil
}
