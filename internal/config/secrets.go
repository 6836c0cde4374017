package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MissingOpenAIKeyMessage показывается пользователю, если ключ OpenAI не найден.
const MissingOpenAIKeyMessage = "OpenAI APIキーが見つかりません。環境変数 OPENAI_API_KEY またはシークレットファイルに設定してください。"

// ConfigurationError фатальная ошибка конфигурации. Без перенастройки повторить нельзя.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError проверяет тип ошибки.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// secrets содержимое SecretsFile. Ключ OpenAI допускается плоским
//
//	openai_api_key: sk-...
//
// или вложенным
//
//	openai:
//	  openai_api_key: sk-...
type secrets struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAI       struct {
		OpenAIAPIKey string `yaml:"openai_api_key"`
	} `yaml:"openai"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// ResolveCredentials находит ключи API для выбранных провайдеров.
// Порядок для OpenAI: OPENAI_API_KEY, затем плоский ключ файла секретов, затем вложенный.
func (c *Config) ResolveCredentials() error {
	sec, err := loadSecrets(c.SecretsFile)
	if err != nil {
		return &ConfigurationError{Message: "シークレットファイルを読み込めません", Err: err}
	}

	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		switch {
		case strings.TrimSpace(sec.OpenAIAPIKey) != "":
			c.OpenAI.APIKey = strings.TrimSpace(sec.OpenAIAPIKey)
		case strings.TrimSpace(sec.OpenAI.OpenAIAPIKey) != "":
			c.OpenAI.APIKey = strings.TrimSpace(sec.OpenAI.OpenAIAPIKey)
		}
	}
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		c.Gemini.APIKey = strings.TrimSpace(sec.GeminiAPIKey)
	}

	if c.NeedsOpenAI() && strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return &ConfigurationError{Message: MissingOpenAIKeyMessage}
	}
	if c.ImageProvider == ProviderGemini && c.Gemini.APIKey == "" {
		return &ConfigurationError{Message: "Gemini APIキーが見つかりません。GEMINI_API_KEY を設定してください。"}
	}
	return c.validateProviders()
}

func (c *Config) validateProviders() error {
	switch c.TextProvider {
	case ProviderOpenAI, ProviderStub:
	default:
		return &ConfigurationError{Message: fmt.Sprintf("unknown text provider %q", c.TextProvider)}
	}
	switch c.ImageProvider {
	case ProviderOpenAI, ProviderGemini, ProviderStub:
	default:
		return &ConfigurationError{Message: fmt.Sprintf("unknown image provider %q", c.ImageProvider)}
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return &ConfigurationError{Message: fmt.Sprintf("unknown session backend %q", c.Session.Backend)}
	}
	return nil
}

// loadSecrets читает файл секретов. Отсутствие файла не ошибка.
func loadSecrets(path string) (secrets, error) {
	var s secrets
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
