// Package reconcile реализует ночную сверку недавних реакций
// с источником истины и устранение дрейфа.
// service.go содержит сам обход: партии фиксированного размера,
// параллельность внутри партии, изоляция ошибок по элементам.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"droplab.ru/points-bot/internal/features/reactions"
)

// Lister отдаёт реакции, подлежащие сверке, и принимает отметки о ней.
type Lister interface {
	ListActiveSince(ctx context.Context, since time.Time) ([]*reactions.Reaction, error)
	TouchVerified(ctx context.Context, reactionID int64) error
}

// Source отвечает на вопрос «реакция всё ещё стоит у источника?».
type Source interface {
	StillExists(ctx context.Context, re *reactions.Reaction) (bool, error)
}

// Corrector устраняет дрейф: деактивация + списание + уведомление,
// та же последовательность, что и при снятии реакции пользователем.
type Corrector interface {
	RemoveStale(ctx context.Context, re *reactions.Reaction) error
}

// Auditor сверяет сумму корректировок с балансом пользователя.
// Вызывается после каждого списания сверкой: расхождение — признак бага
// в транзакционной логике, и ловить его надо как можно раньше.
type Auditor interface {
	CheckConsistency(ctx context.Context, userID int64) (bool, error)
}

// Stats — итог одного прогона сверки.
type Stats struct {
	Total    int           `json:"total"`
	Verified int           `json:"verified"`
	Removed  int           `json:"removed"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"-"`
}

// Service выполняет сверку.
type Service struct {
	lister    Lister
	source    Source
	corrector Corrector
	auditor   Auditor
	window    time.Duration
	batchSize int
}

// NewService создаёт сервис сверки.
func NewService(lister Lister, source Source, corrector Corrector, auditor Auditor, window time.Duration, batchSize int) *Service {
	return &Service{
		lister:    lister,
		source:    source,
		corrector: corrector,
		auditor:   auditor,
		window:    window,
		batchSize: batchSize,
	}
}

// Sweep выполняет один прогон сверки по активным реакциям за окно.
//
// Реакции обрабатываются партиями: внутри партии — параллельно,
// партии — последовательно, это ограничивает одновременные записи в леджер.
// Ошибка по отдельной реакции учитывается и не прерывает прогон;
// фатальна только невозможность получить сам список.
//
// Прогон идемпотентен: снятые реакции исключены фильтром по статусу,
// повторный запуск не создаёт новых корректировок.
func (s *Service) Sweep(ctx context.Context) (*Stats, error) {
	start := time.Now()

	items, err := s.lister.ListActiveSince(ctx, start.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка реакций: %w", err)
	}

	stats := &Stats{Total: len(items)}
	var mu sync.Mutex

	for batch := range slices.Chunk(items, s.batchSize) {
		g, gctx := errgroup.WithContext(ctx)
		for _, re := range batch {
			g.Go(func() error {
				outcome := s.reconcileOne(gctx, re)
				mu.Lock()
				switch outcome {
				case outcomeVerified:
					stats.Verified++
				case outcomeRemoved:
					stats.Removed++
				case outcomeError:
					stats.Errors++
				}
				mu.Unlock()
				// Ошибки изолированы по элементам — партию не отменяем
				return nil
			})
		}
		g.Wait()
	}

	stats.Duration = time.Since(start)

	log.WithFields(log.Fields{
		"total":    stats.Total,
		"verified": stats.Verified,
		"removed":  stats.Removed,
		"errors":   stats.Errors,
		"duration": stats.Duration.String(),
	}).Info("Сверка реакций завершена")

	return stats, nil
}

type outcome int

const (
	outcomeVerified outcome = iota
	outcomeRemoved
	outcomeError
)

func (s *Service) reconcileOne(ctx context.Context, re *reactions.Reaction) outcome {
	logger := log.WithFields(log.Fields{
		"reaction_id": re.ID,
		"user_id":     re.UserID,
		"content_id":  re.ContentID,
	})

	exists, err := s.source.StillExists(ctx, re)
	if err != nil {
		logger.WithError(err).Error("Сверка: ошибка проверки источника")
		return outcomeError
	}

	if exists {
		if err := s.lister.TouchVerified(ctx, re.ID); err != nil {
			logger.WithError(err).Error("Сверка: ошибка отметки подтверждения")
			return outcomeError
		}
		return outcomeVerified
	}

	if err := s.corrector.RemoveStale(ctx, re); err != nil {
		logger.WithError(err).Error("Сверка: ошибка снятия реакции")
		return outcomeError
	}

	// Списание прошло — сверяем леджер затронутого пользователя.
	// Аудит best-effort: расхождение логируется, итог сверки не меняется
	if _, err := s.auditor.CheckConsistency(ctx, re.UserID); err != nil {
		logger.WithError(err).Error("Сверка: ошибка аудита леджера после списания")
	}
	return outcomeRemoved
}
