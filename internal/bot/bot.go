// Package bot содержит главный модуль бота — запуск long polling
// и маршрутизацию апдейтов по обработчикам.
package bot

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"droplab.ru/points-bot/internal/bot/middleware"
	"droplab.ru/points-bot/internal/config"
	"droplab.ru/points-bot/internal/features/points"
	"droplab.ru/points-bot/internal/features/reactions"
)

// Bot объединяет Telegram API и обработчики движка.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	rateLimiter *middleware.RateLimiter

	pointsHandler   *points.Handler
	reactionHandler *reactions.Handler
}

// New создаёт бота.
func New(api *telego.Bot, cfg *config.Config, pointsHandler *points.Handler, reactionHandler *reactions.Handler) *Bot {
	return &Bot{
		api:             api,
		cfg:             cfg,
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		pointsHandler:   pointsHandler,
		reactionHandler: reactionHandler,
	}
}

// Start запускает long polling и обрабатывает апдейты до отмены контекста.
// message_reaction обязан быть в allowed_updates — по умолчанию Telegram
// такие апдейты не шлёт.
func (b *Bot) Start(ctx context.Context) {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message", "message_reaction"},
	})
	if err != nil {
		log.WithError(err).Error("Не удалось запустить long polling")
		return
	}

	// Ограничиваем число одновременных обработчиков,
	// иначе "go на каждый апдейт" = утечка памяти при флуде
	sem := make(chan struct{}, b.cfg.BotMaxInflight)

	for update := range updates {
		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		}

		go func(u telego.Update) {
			defer func() { <-sem }()
			defer middleware.RecoverFromPanic()
			b.handleUpdate(ctx, u)
		}(update)
	}
}

// Stop освобождает ресурсы бота.
func (b *Bot) Stop() {
	b.rateLimiter.Close()
}

func (b *Bot) handleUpdate(ctx context.Context, u telego.Update) {
	switch {
	case u.MessageReaction != nil:
		b.reactionHandler.HandleReactionUpdate(ctx, u.MessageReaction)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telego.Message) {
	if msg.From == nil {
		return
	}
	// Команды работают только в основном чате
	if msg.Chat.ID != b.cfg.FloodChatID {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text != "!баллы" {
		return
	}

	if !b.rateLimiter.Allow(msg.From.ID) {
		log.WithField("user_id", msg.From.ID).Debug("Rate limit: команда отброшена")
		return
	}

	b.pointsHandler.HandleBalance(ctx, msg.Chat.ID, msg.From.ID)
}
