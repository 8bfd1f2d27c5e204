// Package reconcile — source.go реализует источник истины на основе
// журнала сырых событий реакций.
//
// Telegram не даёт перечитать реакции на сообщении, поэтому состоянием
// источника считается последнее сырое событие по ключу (пользователь,
// контент, вид). Журнал пополняется до всех проверок движка, так что
// снятие, отброшенное кулдауном, здесь видно — и сверка его доснимает.
package reconcile

import (
	"context"

	"droplab.ru/points-bot/internal/features/reactions"
)

// JournalSource — источник истины по журналу reaction_events.
type JournalSource struct {
	repo *reactions.Repository
}

// NewJournalSource создаёт журнальный источник истины.
func NewJournalSource(repo *reactions.Repository) *JournalSource {
	return &JournalSource{repo: repo}
}

// StillExists проверяет, стоит ли реакция по последнему событию журнала.
// Реакция без событий (данные до ввода журнала) считается подтверждённой:
// отсутствие свидетельств — не дрейф.
func (s *JournalSource) StillExists(ctx context.Context, re *reactions.Reaction) (bool, error) {
	action, found, err := s.repo.LatestEventAction(ctx, re)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return action == reactions.ActionAdded, nil
}
