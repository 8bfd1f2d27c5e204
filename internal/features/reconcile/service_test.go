package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"droplab.ru/points-bot/internal/features/reactions"
)

// fakeStore изображает хранилище реакций и источник истины для сверки.
// Реализует Lister, Source, Corrector и Auditor.
type fakeStore struct {
	mu       sync.Mutex
	items    map[int64]*reactions.Reaction
	gone     map[int64]bool // реакции, снятые у источника
	checkErr map[int64]bool // ошибки проверки источника
	touchErr map[int64]bool // ошибки отметки сверки

	touched int
	removed int
	audited []int64 // пользователи, чей леджер сверялся после списания
}

func newFakeStore(reactionIDs ...int64) *fakeStore {
	items := make(map[int64]*reactions.Reaction, len(reactionIDs))
	for _, id := range reactionIDs {
		items[id] = &reactions.Reaction{
			ID:        id,
			UserID:    id,
			ContentID: 100,
			Kind:      "👍",
			Status:    reactions.StatusActive,
			Points:    20,
			CreatedAt: time.Now().Add(-time.Hour),
		}
	}
	return &fakeStore{
		items:    items,
		gone:     make(map[int64]bool),
		checkErr: make(map[int64]bool),
		touchErr: make(map[int64]bool),
	}
}

func (f *fakeStore) ListActiveSince(ctx context.Context, since time.Time) ([]*reactions.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*reactions.Reaction
	for _, re := range f.items {
		if re.Status == reactions.StatusActive && !re.CreatedAt.Before(since) {
			out = append(out, re)
		}
	}
	return out, nil
}

func (f *fakeStore) TouchVerified(ctx context.Context, reactionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr[reactionID] {
		return errors.New("сбой отметки")
	}
	f.touched++
	return nil
}

func (f *fakeStore) StillExists(ctx context.Context, re *reactions.Reaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr[re.ID] {
		return false, errors.New("сбой источника")
	}
	return !f.gone[re.ID], nil
}

func (f *fakeStore) RemoveStale(ctx context.Context, re *reactions.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[re.ID].Status = reactions.StatusInactive
	f.removed++
	return nil
}

func (f *fakeStore) CheckConsistency(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audited = append(f.audited, userID)
	return true, nil
}

func newTestService(store *fakeStore, batchSize int) *Service {
	return NewService(store, store, store, store, 24*time.Hour, batchSize)
}

func TestSweepVerifiesAndRemoves(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4)
	store.gone[3] = true

	stats, err := newTestService(store, 50).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if stats.Total != 4 || stats.Verified != 3 || stats.Removed != 1 || stats.Errors != 0 {
		t.Errorf("неожиданная статистика: %+v", stats)
	}
	if store.items[3].Status != reactions.StatusInactive {
		t.Error("снятая у источника реакция должна стать неактивной")
	}
}

func TestSweepIsolatesErrors(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4, 5)
	store.checkErr[2] = true
	store.touchErr[4] = true
	store.gone[5] = true

	stats, err := newTestService(store, 2).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	// Ошибки по отдельным реакциям не прерывают прогон
	if stats.Total != 5 {
		t.Errorf("Total = %d, ожидалось 5", stats.Total)
	}
	if stats.Errors != 2 {
		t.Errorf("Errors = %d, ожидалось 2", stats.Errors)
	}
	if stats.Verified != 2 || stats.Removed != 1 {
		t.Errorf("Verified/Removed = %d/%d, ожидалось 2/1", stats.Verified, stats.Removed)
	}
}

func TestSweepIdempotent(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	store.gone[1] = true
	store.gone[2] = true

	svc := newTestService(store, 50)

	first, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("первый прогон: %v", err)
	}
	if first.Removed != 2 {
		t.Fatalf("первый прогон должен снять 2 реакции, снято %d", first.Removed)
	}

	// Повторный прогон: снятые исключены фильтром по статусу,
	// новых корректировок нет
	second, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("второй прогон: %v", err)
	}
	if second.Total != 1 || second.Removed != 0 {
		t.Errorf("второй прогон: %+v, ожидалось Total=1, Removed=0", second)
	}
	if store.removed != 2 {
		t.Errorf("корректор вызван %d раз, ожидалось 2", store.removed)
	}
}

func TestSweepProcessesAllBatches(t *testing.T) {
	ids := make([]int64, 0, 120)
	for i := int64(1); i <= 120; i++ {
		ids = append(ids, i)
	}
	store := newFakeStore(ids...)

	stats, err := newTestService(store, 50).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if stats.Total != 120 || stats.Verified != 120 {
		t.Errorf("обработаны не все партии: %+v", stats)
	}
	if store.touched != 120 {
		t.Errorf("touched = %d, ожидалось 120", store.touched)
	}
}

func TestSweepSkipsOldReactions(t *testing.T) {
	store := newFakeStore(1, 2)
	store.items[2].CreatedAt = time.Now().Add(-48 * time.Hour)

	stats, err := newTestService(store, 50).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total = %d, ожидалось 1 (старые реакции вне окна)", stats.Total)
	}
}

// Реактивированная реакция получает свежую отметку активации и потому
// снова попадает в окно сверки: старая строка, переустановленная вчера
// и затем снятая у источника, должна быть доснята.
func TestSweepRepairsReactivatedReaction(t *testing.T) {
	store := newFakeStore(1)
	// Переустановка обновила отметку активации, хотя строка существует давно
	store.items[1].CreatedAt = time.Now().Add(-time.Hour)
	store.gone[1] = true

	stats, err := newTestService(store, 50).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Total != 1 || stats.Removed != 1 {
		t.Errorf("реактивированная реакция не доснята: %+v", stats)
	}
}

func TestSweepAuditsAfterRemoval(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	store.gone[2] = true

	if _, err := newTestService(store, 50).Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	// Аудит леджера выполняется только для пользователей со списанием
	if len(store.audited) != 1 || store.audited[0] != 2 {
		t.Errorf("audited = %v, ожидался только пользователь 2", store.audited)
	}
}
