package session

import (
	"EyewearAdvisor/internal/service/survey"
	"context"
	"errors"
	"time"
)

// ErrNotFound: сессии нет или она истекла.
var ErrNotFound = errors.New("session not found")

// Session состояние анкеты одного пользователя.
type Session struct {
	ID        string       `json:"id"`
	State     survey.State `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (s *Session) clone() *Session {
	c := *s
	c.State = s.State.Clone()
	return &c
}

// Store хранит сессии. Реализации возвращают копии: изменения видны другим запросам только после Save.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
