// Package points — handlers.go обрабатывает команду !баллы.
package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/common"
)

// Handler обрабатывает команды баллов в чате.
type Handler struct {
	service *Service
	bot     *telego.Bot
}

// NewHandler создаёт обработчик команд баллов.
func NewHandler(service *Service, bot *telego.Bot) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBalance — команда !баллы. Показывает ТОЛЬКО свой баланс.
func (h *Handler) HandleBalance(ctx context.Context, chatID, telegramUserID int64) {
	user, err := h.service.ResolveByTelegramID(ctx, telegramUserID)
	if errors.Is(err, common.ErrUserNotFound) {
		h.sendMessage(ctx, chatID, "❌ Вы не зарегистрированы на платформе")
		return
	}
	if err != nil {
		log.WithError(err).Error("Ошибка поиска пользователя")
		h.sendMessage(ctx, chatID, "❌ Ошибка получения баланса")
		return
	}

	// Баланс читаем отдельно: между резолвом и ответом он мог измениться
	balance, err := h.service.Balance(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(ctx, chatID, "❌ Ошибка получения баланса")
		return
	}

	h.sendMessage(ctx, chatID, fmt.Sprintf("⭐ Твой баланс: %s", common.FormatPoints(balance)))
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	_, err := h.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
