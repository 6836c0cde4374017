package ai

import (
	"EyewearAdvisor/internal/config"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiImageClient это альтернативный генератор изображений на Gemini.
// Модель возвращает байты картинки, поэтому ссылка отдаётся как data URL.
type GeminiImageClient struct {
	client *genai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewGeminiImageClient(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*GeminiImageClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Gemini.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Gemini.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiImageClient{client: client, model: cfg.Gemini.ImageModel, logger: logger}, nil
}

func (c *GeminiImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	c.logger.Infow("Запрос изображения в Gemini...", "model", c.model)
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: "1:1"},
	})
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка генерации изображения Gemini", "duration", dur.String(), "error", err)
		return "", err
	}
	c.logger.Infow("Изображение Gemini получено", "duration", dur.String())
	return firstInlineImage(result)
}

func firstInlineImage(result *genai.GenerateContentResponse) (string, error) {
	if result == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	for _, cand := range result.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(part.InlineData.Data)), nil
		}
	}
	return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
}
