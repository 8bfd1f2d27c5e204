// Package reactions — handlers.go принимает апдейты message_reaction из Telegram.
// Обработчик превращает разницу старого и нового набора реакций
// в события added/removed и прогоняет их через движок.
package reactions

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает апдейты реакций.
type Handler struct {
	service     *Service
	floodChatID int64
}

// NewHandler создаёт обработчик реакций.
func NewHandler(service *Service, floodChatID int64) *Handler {
	return &Handler{service: service, floodChatID: floodChatID}
}

// HandleReactionUpdate обрабатывает один апдейт message_reaction.
func (h *Handler) HandleReactionUpdate(ctx context.Context, upd *telego.MessageReactionUpdated) {
	if upd == nil {
		return
	}
	// Баллы начисляются только в основном чате
	if upd.Chat.ID != h.floodChatID {
		log.WithFields(log.Fields{
			"chat_id":       upd.Chat.ID,
			"flood_chat_id": h.floodChatID,
		}).Debug("Реакция вне разрешённого чата — игнорируем")
		return
	}
	// Анонимные реакции (от имени канала/чата) не сопоставимы с пользователем
	if upd.User == nil {
		log.WithField("chat_id", upd.Chat.ID).Debug("Реакция без пользователя (анонимная) — игнорируем")
		return
	}

	oldSet := reactionKinds(upd.OldReaction)
	newSet := reactionKinds(upd.NewReaction)

	// added: есть в новом наборе, не было в старом
	for kind := range newSet {
		if !oldSet[kind] {
			h.processEvent(ctx, upd, kind, ActionAdded)
		}
	}
	// removed: было в старом наборе, нет в новом
	for kind := range oldSet {
		if !newSet[kind] {
			h.processEvent(ctx, upd, kind, ActionRemoved)
		}
	}
}

func (h *Handler) processEvent(ctx context.Context, upd *telego.MessageReactionUpdated, kind string, action Action) {
	e := Event{
		TelegramUserID: upd.User.ID,
		ChatID:         upd.Chat.ID,
		ContentID:      int64(upd.MessageID),
		Kind:           kind,
		Action:         action,
	}

	// Журнал пополняется до обработки: он отражает источник, а не решения движка
	if err := h.service.Journal(ctx, e); err != nil {
		log.WithError(err).Error("Ошибка записи события реакции в журнал")
	}

	result, err := h.service.Process(ctx, e)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"telegram_user_id": e.TelegramUserID,
			"content_id":       e.ContentID,
			"action":           e.Action,
		}).Error("Ошибка обработки события реакции")
		return
	}

	log.WithFields(log.Fields{
		"telegram_user_id": e.TelegramUserID,
		"content_id":       e.ContentID,
		"kind":             e.Kind,
		"action":           e.Action,
		"code":             result.Code,
		"points_change":    result.PointsChange,
	}).Debug("Событие реакции обработано")
}

// reactionKinds приводит набор реакций Telegram к множеству строковых видов.
// Обычные эмодзи — сам эмодзи, кастомные — префикс custom:, платные — paid.
func reactionKinds(reactions []telego.ReactionType) map[string]bool {
	kinds := make(map[string]bool, len(reactions))
	for _, r := range reactions {
		if k := reactionKind(r); k != "" {
			kinds[k] = true
		}
	}
	return kinds
}

func reactionKind(r telego.ReactionType) string {
	switch rt := r.(type) {
	case *telego.ReactionTypeEmoji:
		return rt.Emoji
	case *telego.ReactionTypeCustomEmoji:
		return fmt.Sprintf("custom:%s", rt.CustomEmojiID)
	case *telego.ReactionTypePaid:
		return "paid"
	default:
		log.WithField("type", r.ReactionType()).Warn("Неизвестный тип реакции")
		return ""
	}
}
