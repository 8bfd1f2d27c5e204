// Package points — service.go содержит бизнес-логику работы с балансом.
package points

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service управляет балансами баллов.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис баллов.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ResolveByTelegramID находит участника платформы по Telegram ID.
func (s *Service) ResolveByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	return s.repo.ResolveByTelegramID(ctx, telegramID)
}

// Balance возвращает текущий баланс пользователя.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Balance(ctx, userID)
}

// CheckConsistency сверяет сумму корректировок с балансом.
// Расхождение — признак бага в транзакционной логике, логируем как ошибку.
func (s *Service) CheckConsistency(ctx context.Context, userID int64) (bool, error) {
	sum, balance, err := s.repo.Audit(ctx, userID)
	if err != nil {
		return false, err
	}
	if sum != balance {
		log.WithFields(log.Fields{
			"user_id":         userID,
			"adjustments_sum": sum,
			"total_points":    balance,
		}).Error("Нарушен инвариант леджера: сумма корректировок не равна балансу")
		return false, nil
	}
	return true, nil
}
