package ai

import (
	"context"
	"errors"
)

// TextGenerator генерирует текст по промпту. Все реализации должны быть взаимозаменяемыми.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator генерирует одно изображение и возвращает ссылку на него (URL или data URL).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse: провайдер ответил без ожидаемого содержимого.
var ErrEmptyResponse = errors.New("empty response from provider")
