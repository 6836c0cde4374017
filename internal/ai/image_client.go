package ai

import (
	"EyewearAdvisor/internal/config"
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// ImageClient генерирует изображение через Images API и возвращает URL первого результата.
type ImageClient struct {
	client *openai.Client
	model  openai.ImageModel
	size   openai.ImageGenerateParamsSize
	logger *zap.SugaredLogger
}

func NewImageClient(client *openai.Client, cfg *config.Config, logger *zap.SugaredLogger) *ImageClient {
	model := openai.ImageModel(cfg.OpenAI.ImageModel)
	if model == "" {
		model = openai.ImageModelDallE3
	}
	size := openai.ImageGenerateParamsSize(cfg.OpenAI.ImageSize)
	if size == "" {
		size = openai.ImageGenerateParamsSize1024x1024
	}
	return &ImageClient{client: client, model: model, size: size, logger: logger}
}

func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	c.logger.Infow("Запрос изображения в OpenAI...", "model", c.model, "size", c.size)
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  c.model,
		Size:   c.size,
		N:      openai.Int(1),
	})
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка генерации изображения OpenAI", "duration", dur.String(), "error", err)
		return "", err
	}
	c.logger.Infow("Изображение OpenAI получено", "duration", dur.String())

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation: %w", ErrEmptyResponse)
	}
	return resp.Data[0].URL, nil
}
