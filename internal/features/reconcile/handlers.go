// Package reconcile — handlers.go отдаёт HTTP-эндпоинт запуска сверки.
// Эндпоинт дергается планировщиком (или внешним кроном) и защищён
// общим секретом в заголовке Authorization.
package reconcile

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает HTTP-запросы сверки.
type Handler struct {
	service *Service
}

// NewHandler создаёт HTTP-обработчик сверки.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sweepStats struct {
	Total    int    `json:"total"`
	Verified int    `json:"verified"`
	Removed  int    `json:"removed"`
	Errors   int    `json:"errors"`
	Duration string `json:"duration"`
}

type sweepResponse struct {
	Success bool       `json:"success"`
	Stats   sweepStats `json:"stats"`
}

// HandleSweep — GET /cron/verify-reactions.
// Полный провал прогона — 500, этот запуск будет повторён по расписанию.
func (h *Handler) HandleSweep(c echo.Context) error {
	stats, err := h.service.Sweep(c.Request().Context())
	if err != nil {
		log.WithError(err).Error("Сверка полностью провалилась")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "sweep_failed",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, sweepResponse{
		Success: true,
		Stats: sweepStats{
			Total:    stats.Total,
			Verified: stats.Verified,
			Removed:  stats.Removed,
			Errors:   stats.Errors,
			Duration: stats.Duration.String(),
		},
	})
}
