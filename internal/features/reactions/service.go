// Package reactions — service.go содержит машину состояний обработки событий.
// Поток: событие → кулдаун → детектор накрутки → переход → транзакция леджера → уведомление.
package reactions

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
	"droplab.ru/points-bot/internal/features/points"
)

// Notifier — побочный канал уведомлений. Доставка best-effort:
// реализация логирует ошибку и не возвращает её.
type Notifier interface {
	PointsGained(ctx context.Context, userID, amount int64)
	PointsLost(ctx context.Context, userID, amount int64)
	Warning(ctx context.Context, userID int64, message string)
}

// Service обрабатывает события реакций.
type Service struct {
	repo     *Repository
	points   *points.Repository
	guard    *CooldownGuard
	detector *ManipulationDetector
	notifier Notifier
	award    int64
}

// NewService создаёт сервис обработки реакций.
func NewService(repo *Repository, pointsRepo *points.Repository, guard *CooldownGuard, detector *ManipulationDetector, notifier Notifier, award int64) *Service {
	return &Service{
		repo:     repo,
		points:   pointsRepo,
		guard:    guard,
		detector: detector,
		notifier: notifier,
		award:    award,
	}
}

// Process обрабатывает одно событие реакции.
//
// Отказы (кулдаун, накрутка, дубликат, нет пользователя) возвращаются
// как Result с Success=false и кодом — это НЕ ошибки. Ошибка возвращается
// только при сбое инфраструктуры на прямом пути записи; ретраев нет,
// решение за вызывающим.
func (s *Service) Process(ctx context.Context, e Event) (*Result, error) {
	logger := log.WithFields(log.Fields{
		"telegram_user_id": e.TelegramUserID,
		"content_id":       e.ContentID,
		"kind":             e.Kind,
		"action":           e.Action,
	})

	// 1. Сопоставляем внешнюю личность с участником платформы
	user, err := s.points.ResolveByTelegramID(ctx, e.TelegramUserID)
	if errors.Is(err, common.ErrUserNotFound) {
		logger.Debug("Событие от незарегистрированного пользователя — игнорируем")
		return &Result{Code: ResultUserNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	// 2. Кулдаун: тихий отказ, без уведомления
	inCooldown, err := s.guard.InCooldown(ctx, user.ID, e.ContentID)
	if err != nil {
		return nil, err
	}
	if inCooldown {
		logger.WithField("user_id", user.ID).Debug("Кулдаун активен — событие отброшено")
		return &Result{Code: ResultCooldownActive}, nil
	}

	// 3. Детектор накрутки: отказ + предупреждение пользователю
	manipulating, err := s.detector.IsManipulating(ctx, user.ID, e.ContentID)
	if err != nil {
		return nil, err
	}
	if manipulating {
		logger.WithField("user_id", user.ID).Warn("Обнаружена накрутка реакциями — мутация заблокирована")
		s.notifier.Warning(ctx, user.ID,
			"Слишком частое переключение реакций. Баллы за эту реакцию заморожены.")
		return &Result{Code: ResultManipulationDetected}, nil
	}

	// 4. Переход машины состояний
	existing, err := s.repo.GetByKey(ctx, user.ID, e.ContentID, e.Kind)
	if err != nil {
		return nil, err
	}

	switch e.Action {
	case ActionAdded:
		return s.applyAdded(ctx, user, e, existing, logger)
	case ActionRemoved:
		return s.applyRemoved(ctx, user, existing, logger)
	default:
		return nil, fmt.Errorf("неизвестное действие события: %q", e.Action)
	}
}

func (s *Service) applyAdded(ctx context.Context, user *points.User, e Event, existing *Reaction, logger *log.Entry) (*Result, error) {
	if DecideAdded(existing) == TransitionNone {
		logger.Debug("Реакция уже активна — дубликат")
		return &Result{Code: ResultAlreadyExists}, nil
	}

	re, err := s.repo.ActivateWithAward(ctx, user.ID, e.ChatID, e.ContentID, e.Kind, s.award)
	if err != nil {
		return nil, err
	}

	s.notifier.PointsGained(ctx, user.ID, re.Points)

	logger.WithFields(log.Fields{
		"user_id":     user.ID,
		"reaction_id": re.ID,
		"points":      re.Points,
	}).Info("Баллы начислены за реакцию")
	return &Result{Success: true, Code: ResultAdded, PointsChange: re.Points}, nil
}

func (s *Service) applyRemoved(ctx context.Context, user *points.User, existing *Reaction, logger *log.Entry) (*Result, error) {
	if DecideRemoved(existing) == TransitionNone {
		logger.Debug("Активной реакции нет — снимать нечего")
		return &Result{Code: ResultNotFound}, nil
	}

	if err := s.repo.DeactivateWithDeduction(ctx, existing, points.ReasonReactionRemove); err != nil {
		return nil, err
	}

	s.notifier.PointsLost(ctx, user.ID, existing.Points)

	logger.WithFields(log.Fields{
		"user_id":     user.ID,
		"reaction_id": existing.ID,
		"points":      existing.Points,
	}).Info("Баллы списаны за снятую реакцию")
	return &Result{Success: true, Code: ResultRemoved, PointsChange: -existing.Points}, nil
}

// RemoveStale выполняет ту же последовательность, что и снятие пользователем,
// но от имени ночной сверки: деактивация + списание + уведомление.
func (s *Service) RemoveStale(ctx context.Context, re *Reaction) error {
	if err := s.repo.DeactivateWithDeduction(ctx, re, points.ReasonReconcileRemove); err != nil {
		return err
	}

	s.notifier.PointsLost(ctx, re.UserID, re.Points)

	log.WithFields(log.Fields{
		"user_id":     re.UserID,
		"reaction_id": re.ID,
		"points":      re.Points,
	}).Info("Сверка сняла неподтверждённую реакцию")
	return nil
}

// Journal записывает сырое событие в журнал. Вызывается обработчиком
// до Process, чтобы источник истины пополнялся независимо от решений движка.
func (s *Service) Journal(ctx context.Context, e Event) error {
	return s.repo.JournalEvent(ctx, e)
}
