// Package verification — service.go содержит бизнес-логику решений
// по выполнениям заданий.
package verification

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
	"droplab.ru/points-bot/internal/features/reactions"
)

// Service управляет ручной верификацией выполнений.
type Service struct {
	repo     *Repository
	notifier reactions.Notifier
}

// NewService создаёт сервис верификации.
func NewService(repo *Repository, notifier reactions.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Approve одобряет выполнение и начисляет баллы за задание.
// Возвращает начисленную сумму. Уведомление — best-effort.
func (s *Service) Approve(ctx context.Context, completionID int64) (int64, error) {
	userID, awarded, err := s.repo.Approve(ctx, completionID)
	if err != nil {
		return 0, err
	}

	s.notifier.PointsGained(ctx, userID, awarded)

	log.WithFields(log.Fields{
		"completion_id": completionID,
		"user_id":       userID,
		"points":        awarded,
	}).Info("Выполнение задания одобрено")
	return awarded, nil
}

// Reject отклоняет выполнение. Причина обязательна, баланс не меняется.
func (s *Service) Reject(ctx context.Context, completionID int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return common.ErrEmptyRejectReason
	}

	if err := s.repo.Reject(ctx, completionID, reason); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"completion_id": completionID,
		"reason":        reason,
	}).Info("Выполнение задания отклонено")
	return nil
}

// PendingCompletion — элемент очереди проверки с корзиной риска.
type PendingCompletion struct {
	*Completion
	Risk Risk
}

// PendingByRisk возвращает очередь проверки: самые рискованные — первыми,
// каждому выполнению присвоена корзина риска.
func (s *Service) PendingByRisk(ctx context.Context) ([]*PendingCompletion, error) {
	completions, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	queue := make([]*PendingCompletion, 0, len(completions))
	for _, c := range completions {
		queue = append(queue, &PendingCompletion{
			Completion: c,
			Risk:       RiskBucket(c.FraudScore),
		})
	}
	return queue, nil
}
