package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	count     int
	expiresAt time.Time
}

// Memory — ограничитель с фиксированным окном в памяти процесса.
// Безопасен для конкурентного использования.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// Option настраивает Memory.
type Option func(*Memory)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory создаёт пустой ограничитель.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsLimited реализует Limiter. Ошибку никогда не возвращает.
func (m *Memory) IsLimited(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.Check(key, limit, window), nil
}

// Check атомарно проверяет и учитывает попытку для key.
func (m *Memory) Check(key string, limit int, window time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.expiresAt.Before(now) {
		m.entries[key] = &entry{count: 1, expiresAt: now.Add(window)}
		return false
	}

	if e.count >= limit {
		return true
	}

	e.count++
	return false
}

// Sweep удаляет истёкшие окна и возвращает число удалённых ключей.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if e.expiresAt.Before(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Reset забывает все счётчики.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*entry)
}

// Len возвращает число отслеживаемых ключей.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Run периодически вызывает Sweep, пока не отменён ctx.
func (m *Memory) Run(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				log.Debug("rate limit entries swept",
					slog.Int("removed", removed),
					slog.Int("remaining", m.Len()),
				)
			}
		}
	}
}
