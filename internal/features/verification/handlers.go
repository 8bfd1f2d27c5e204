// Package verification — handlers.go содержит HTTP-обработчики админ-гейта.
// Отказы приходят из сервиса как доменные ошибки и превращаются
// в 4xx-ответы с кодом и сообщением; до леджера они не доходят.
package verification

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
)

// Handler обрабатывает HTTP-запросы верификации.
type Handler struct {
	service *Service
	auth    *Auth
}

// NewHandler создаёт HTTP-обработчик верификации.
func NewHandler(service *Service, auth *Auth) *Handler {
	return &Handler{service: service, auth: auth}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin — POST /admin/login. Выдаёт сессионный токен по паролю.
func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid_request", Message: "требуется поле password",
		})
	}

	token, err := h.auth.Login(c.Request().Context(), c.RealIP(), req.Password)
	switch {
	case errors.Is(err, common.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, errorResponse{
			Error: "too_many_attempts", Message: err.Error(),
		})
	case errors.Is(err, common.ErrWrongPassword):
		return c.JSON(http.StatusUnauthorized, errorResponse{
			Error: "wrong_password", Message: err.Error(),
		})
	case err != nil:
		log.WithError(err).Error("Ошибка входа администратора")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "internal", Message: "внутренняя ошибка",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

type verifyRequest struct {
	CompletionID int64  `json:"completionId"`
	Action       string `json:"action"`
	Reason       string `json:"reason"`
}

type verifyResponse struct {
	Message       string `json:"message"`
	PointsAwarded *int64 `json:"pointsAwarded,omitempty"`
}

// HandleVerifyCompletion — POST /admin/verify-completion.
// Валидация — до любого обращения к леджеру.
func (h *Handler) HandleVerifyCompletion(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid_request", Message: "некорректное тело запроса",
		})
	}
	if req.CompletionID == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid_request", Message: "требуется поле completionId",
		})
	}

	ctx := c.Request().Context()
	switch req.Action {
	case "approve":
		awarded, err := h.service.Approve(ctx, req.CompletionID)
		if err != nil {
			return h.decisionError(c, err)
		}
		return c.JSON(http.StatusOK, verifyResponse{
			Message:       "выполнение одобрено",
			PointsAwarded: &awarded,
		})

	case "reject":
		if err := h.service.Reject(ctx, req.CompletionID, req.Reason); err != nil {
			return h.decisionError(c, err)
		}
		return c.JSON(http.StatusOK, verifyResponse{Message: "выполнение отклонено"})

	default:
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid_request", Message: "action должен быть approve или reject",
		})
	}
}

func (h *Handler) decisionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrCompletionNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{
			Error: "completion_not_found", Message: err.Error(),
		})
	case errors.Is(err, common.ErrCompletionNotPending):
		return c.JSON(http.StatusConflict, errorResponse{
			Error: "completion_not_pending", Message: err.Error(),
		})
	case errors.Is(err, common.ErrEmptyRejectReason):
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
	default:
		log.WithError(err).Error("Ошибка решения по выполнению")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "internal", Message: "внутренняя ошибка",
		})
	}
}

type pendingItem struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	TaskTitle  string `json:"taskTitle"`
	TaskPoints int64  `json:"taskPoints"`
	FraudScore int    `json:"fraudScore"`
	Risk       Risk   `json:"risk"`
	CreatedAt  string `json:"createdAt"`
}

// HandlePending — GET /admin/completions/pending. Очередь ручной проверки.
func (h *Handler) HandlePending(c echo.Context) error {
	queue, err := h.service.PendingByRisk(c.Request().Context())
	if err != nil {
		log.WithError(err).Error("Ошибка получения очереди проверки")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "internal", Message: "внутренняя ошибка",
		})
	}

	items := make([]pendingItem, 0, len(queue))
	for _, q := range queue {
		items = append(items, pendingItem{
			ID:         q.ID,
			Username:   q.Username,
			TaskTitle:  q.TaskTitle,
			TaskPoints: q.TaskPoints,
			FraudScore: q.FraudScore,
			Risk:       q.Risk,
			CreatedAt:  q.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"completions": items})
}
