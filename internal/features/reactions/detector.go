// Package reactions — detector.go определяет накрутку баллов
// циклами «добавил/убрал» по журналу корректировок.
package reactions

import (
	"context"
	"time"

	"droplab.ru/points-bot/internal/features/points"
)

// ManipulationDetector ищет злоупотребление переключением реакции:
// частые смены причины корректировки (начисление → списание → начисление ...)
// по одной паре (пользователь, контент) внутри скользящего окна.
type ManipulationDetector struct {
	points    *points.Repository
	window    time.Duration
	threshold int
}

// NewManipulationDetector создаёт детектор накрутки.
func NewManipulationDetector(pointsRepo *points.Repository, window time.Duration, threshold int) *ManipulationDetector {
	return &ManipulationDetector{points: pointsRepo, window: window, threshold: threshold}
}

// IsManipulating проверяет историю корректировок пары (пользователь, контент)
// за окно. Только чтение; при true вызывающий код обязан НЕ применять
// мутацию и отправить предупреждение.
func (d *ManipulationDetector) IsManipulating(ctx context.Context, userID, contentID int64) (bool, error) {
	adjustments, err := d.points.AdjustmentsSince(ctx, userID, contentID, time.Now().Add(-d.window))
	if err != nil {
		return false, err
	}
	return CountReasonFlips(adjustments) > d.threshold, nil
}

// CountReasonFlips — чистое ядро детектора: число смен значения reason
// между СОСЕДНИМИ записями, упорядоченными по времени.
// Одиночное начисление без последующего списания не даёт ни одной смены,
// сколько бы записей с одинаковой причиной ни было.
func CountReasonFlips(adjustments []*points.PointAdjustment) int {
	flips := 0
	for i := 1; i < len(adjustments); i++ {
		if adjustments[i].Reason != adjustments[i-1].Reason {
			flips++
		}
	}
	return flips
}
