// Package notifications — service.go содержит best-effort отправку уведомлений.
//
// Канал уведомлений — at-most-once: сбой записи логируется и НЕ
// распространяется наверх, в отличие от леджера, который обязан сходиться.
package notifications

import (
	"context"

	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
)

// Service создаёт уведомления о изменениях баланса и предупреждения.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис уведомлений.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// PointsGained уведомляет о начислении баллов.
func (s *Service) PointsGained(ctx context.Context, userID, amount int64) {
	s.create(ctx, &Notification{
		UserID:       userID,
		Type:         TypePointsGained,
		Title:        "Баллы начислены",
		Message:      "Вам начислено " + common.FormatSignedPoints(amount),
		PointsChange: amount,
		ShowOnLogin:  true,
	})
}

// PointsLost уведомляет о списании баллов.
func (s *Service) PointsLost(ctx context.Context, userID, amount int64) {
	s.create(ctx, &Notification{
		UserID:       userID,
		Type:         TypePointsLost,
		Title:        "Баллы списаны",
		Message:      "С вашего счёта списано " + common.FormatSignedPoints(-amount),
		PointsChange: -amount,
		ShowOnLogin:  true,
	})
}

// Warning отправляет предупреждение без изменения баланса.
func (s *Service) Warning(ctx context.Context, userID int64, message string) {
	s.create(ctx, &Notification{
		UserID:      userID,
		Type:        TypeWarning,
		Title:       "Предупреждение",
		Message:     message,
		ShowOnLogin: true,
	})
}

func (s *Service) create(ctx context.Context, n *Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		// Потеря уведомления допустима, потеря корректировки — нет
		log.WithError(err).WithFields(log.Fields{
			"user_id": n.UserID,
			"type":    n.Type,
		}).Error("Ошибка записи уведомления (проигнорирована)")
	}
}
