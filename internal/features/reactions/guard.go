// Package reactions — guard.go реализует кулдаун между событиями,
// меняющими леджер, по одной паре (пользователь, контент).
package reactions

import (
	"context"
	"time"

	"droplab.ru/points-bot/internal/features/points"
)

// CooldownGuard запрещает повторные начисления/списания по одной паре
// (пользователь, контент) чаще, чем раз в окно. Это основная защита
// от гонок при одновременных добавил/убрал по одному ключу.
type CooldownGuard struct {
	points *points.Repository
	window time.Duration
}

// NewCooldownGuard создаёт кулдаун-защиту с заданным окном.
func NewCooldownGuard(pointsRepo *points.Repository, window time.Duration) *CooldownGuard {
	return &CooldownGuard{points: pointsRepo, window: window}
}

// InCooldown проверяет, была ли по паре (пользователь, контент)
// корректировка леджера внутри окна. Только чтение, без побочных эффектов.
func (g *CooldownGuard) InCooldown(ctx context.Context, userID, contentID int64) (bool, error) {
	last, err := g.points.LastAdjustment(ctx, userID, contentID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}
	return WithinCooldown(last.CreatedAt, time.Now(), g.window), nil
}

// WithinCooldown — чистое ядро проверки: попадает ли момент последней
// корректировки в окно кулдауна относительно «сейчас».
func WithinCooldown(lastAdjustment, now time.Time, window time.Duration) bool {
	return now.Sub(lastAdjustment) < window
}
