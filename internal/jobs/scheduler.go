// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ночная сверка реакций.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/features/reconcile"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron             *cron.Cron
	reconcileService *reconcile.Service
	spec             string
}

// NewScheduler создаёт планировщик задач в заданном часовом поясе.
func NewScheduler(reconcileService *reconcile.Service, timezone, spec string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC", timezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:             cron.New(cron.WithLocation(loc)),
		reconcileService: reconcileService,
		spec:             spec,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночная сверка реакций за последние сутки
	_, err := s.cron.AddFunc(s.spec, func() {
		log.Info("[CRON] Ночная сверка реакций")
		stats, err := s.reconcileService.Sweep(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Сверка провалилась, повтор по расписанию")
			return
		}
		log.WithFields(log.Fields{
			"total":    stats.Total,
			"verified": stats.Verified,
			"removed":  stats.Removed,
			"errors":   stats.Errors,
		}).Info("[CRON] Сверка завершена")
	})
	if err != nil {
		log.WithError(err).Errorf("Некорректное расписание сверки: %q", s.spec)
		return
	}

	s.cron.Start()
	log.Infof("Планировщик задач запущен (%s)", s.spec)
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
