package ai

import (
	"EyewearAdvisor/internal/config"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewOpenAIClient создаёт клиента OpenAI. Повторы SDK отключены: при ошибке пользователь
// повторяет действие сам.
func NewOpenAIClient(cfg *config.Config) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAI.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.GenerationTimeoutSeconds > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.GenerationTimeoutSeconds)*time.Second))
	}
	return openai.NewClient(opts...)
}
