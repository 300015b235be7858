package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"bondmonitor/internal/models"
)

// MemoryHoldingStore - хранилище позиций в памяти
//
// Используется при запуске без БД (DB_ENABLED=false): позиции живут
// только в рамках процесса. Интерфейс совпадает с Postgres репозиторием.
type MemoryHoldingStore struct {
	mu     sync.RWMutex
	open   map[string]models.Holding
	closed []models.ClosedHolding
}

// NewMemoryHoldingStore создаёт пустое хранилище
func NewMemoryHoldingStore() *MemoryHoldingStore {
	return &MemoryHoldingStore{
		open: make(map[string]models.Holding),
	}
}

// Open возвращает открытые позиции в порядке кода облигации
func (s *MemoryHoldingStore) Open(ctx context.Context) ([]models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holdings := make([]models.Holding, 0, len(s.open))
	for _, h := range s.open {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].BondCode < holdings[j].BondCode
	})

	return holdings, nil
}

// Add открывает позицию. Повторное открытие того же кода - ошибка.
func (s *MemoryHoldingStore) Add(ctx context.Context, h models.Holding) error {
	if h.BondCode == "" || h.EntryPrice <= 0 {
		return ErrInvalidHolding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.open[h.BondCode]; exists {
		return ErrHoldingExists
	}
	if h.OpenedAt.IsZero() {
		h.OpenedAt = time.Now()
	}
	s.open[h.BondCode] = h

	return nil
}

// Close закрывает открытую позицию и переносит её в историю
func (s *MemoryHoldingStore) Close(ctx context.Context, bondCode string, exitPrice, pnl float64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, exists := s.open[bondCode]
	if !exists {
		return ErrHoldingNotFound
	}
	delete(s.open, bondCode)

	s.closed = append(s.closed, models.ClosedHolding{
		Holding:   h,
		ClosedAt:  time.Now(),
		ExitPrice: exitPrice,
		Pnl:       pnl,
		Reason:    reason,
	})

	return nil
}

// Closed возвращает историю закрытых позиций (новые последними)
func (s *MemoryHoldingStore) Closed(ctx context.Context, limit int) ([]models.ClosedHolding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.closed
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]models.ClosedHolding, len(history))
	copy(out, history)

	return out, nil
}
