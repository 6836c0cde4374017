package ai

import (
	"EyewearAdvisor/internal/config"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// TextClient отправляет промпт одним системным сообщением в Chat Completions.
type TextClient struct {
	client      *openai.Client
	model       openai.ChatModel
	temperature float64
	logger      *zap.SugaredLogger
}

func NewTextClient(client *openai.Client, cfg *config.Config, logger *zap.SugaredLogger) *TextClient {
	model := openai.ChatModel(cfg.OpenAI.TextModel)
	if model == "" {
		model = openai.ChatModelGPT4Turbo
	}
	return &TextClient{
		client:      client,
		model:       model,
		temperature: cfg.OpenAI.Temperature,
		logger:      logger,
	}
}

func (c *TextClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	c.logger.Infow("Запрос текста в OpenAI...", "model", c.model)
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа OpenAI", "duration", dur.String(), "error", err)
		return "", err
	}
	c.logger.Infow("Ответ OpenAI получен", "duration", dur.String())

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyResponse)
	}
	return text, nil
}
