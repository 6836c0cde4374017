package session

import (
	"EyewearAdvisor/internal/service/survey"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryStore держит сессии в памяти процесса. Сессии без обращений дольше ttl удаляются.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.SugaredLogger
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration, logger *zap.SugaredLogger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *MemoryStore) Create(_ context.Context) (*Session, error) {
	now := m.now()
	s := &Session{ID: uuid.NewString(), State: survey.NewState(), CreatedAt: now, UpdatedAt: now}
	m.mu.Lock()
	m.sessions[s.ID] = s.clone()
	m.mu.Unlock()
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	s.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[s.ID] = s.clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len количество хранимых сессий.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep удаляет истёкшие сессии и возвращает их количество.
func (m *MemoryStore) Sweep() int {
	now := m.now()
	removed := 0
	m.mu.Lock()
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

// Run периодически чистит истёкшие сессии до отмены контекста.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 && m.logger != nil {
				m.logger.Infow("Expired sessions removed", "removed", n)
			}
		}
	}
}

func (m *MemoryStore) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}
