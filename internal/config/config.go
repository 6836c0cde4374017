package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Провайдеры генерации
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderStub   = "stub"
)

// Бэкенды хранилища сессий
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	DebugMode     bool   `env:"DEBUG_MODE"`     //Режим дебага
	TextProvider  string `env:"TEXT_PROVIDER"`  // openai|stub
	ImageProvider string `env:"IMAGE_PROVIDER"` // openai|gemini|stub

	OpenAI OpenAIConfig
	Gemini GeminiConfig
	HTTP   HTTPConfig

	ResultLanguage           string `env:"RESULT_LANGUAGE"`            // Язык описания в ответе модели
	GenerationTimeoutSeconds int    `env:"GENERATION_TIMEOUT_SECONDS"` // Таймаут одного запроса генерации
	QuestionsFile            string `env:"QUESTIONS_FILE"`             // YAML со списком вопросов; пусто = встроенные
	SecretsFile              string `env:"SECRETS_FILE"`               // YAML с ключами API (плоский или вложенный ключ)
	ShareBaseURL             string `env:"SHARE_BASE_URL"`             // Шаблон ссылки «поделиться»

	Session SessionConfig
}

// OpenAIConfig параметры моделей OpenAI.
type OpenAIConfig struct {
	APIKey      string  `env:"OPENAI_API_KEY"` // Может отсутствовать в окружении, тогда берём из SecretsFile
	TextModel   string  `env:"TEXT_MODEL"`
	Temperature float64 `env:"TEXT_TEMPERATURE"`
	ImageModel  string  `env:"IMAGE_MODEL"`
	ImageSize   string  `env:"IMAGE_SIZE"`
}

// GeminiConfig параметры альтернативного генератора изображений.
type GeminiConfig struct {
	APIKey     string `env:"GEMINI_API_KEY"`
	ImageModel string `env:"GEMINI_IMAGE_MODEL"`
	BaseURL    string `env:"GEMINI_BASE_URL"` // Пусто = адрес SDK по умолчанию
}

// HTTPConfig параметры веб-сервера.
type HTTPConfig struct {
	BindAddr string `env:"HTTP_BIND_ADDR"` // напр. 127.0.0.1:8501
}

// SessionConfig хранилище сессий.
type SessionConfig struct {
	Backend       string `env:"SESSION_BACKEND"`     // memory|redis
	TTLSeconds    int    `env:"SESSION_TTL_SECONDS"` // Время жизни сессии без обращений
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:     false,
		TextProvider:  ProviderOpenAI,
		ImageProvider: ProviderOpenAI,
		OpenAI: OpenAIConfig{
			TextModel:   "gpt-4-turbo",
			Temperature: 0.7,
			ImageModel:  "dall-e-3",
			ImageSize:   "1024x1024",
		},
		Gemini: GeminiConfig{
			ImageModel: "gemini-2.5-flash-image",
		},
		HTTP: HTTPConfig{
			BindAddr: "127.0.0.1:8501",
		},
		ResultLanguage:           "Japanese",
		GenerationTimeoutSeconds: 90,
		SecretsFile:              "secrets.yaml",
		ShareBaseURL:             "https://line.me/R/msg/text/?",
		Session: SessionConfig{
			Backend:    SessionBackendMemory,
			TTLSeconds: 24 * 60 * 60,
			RedisAddr:  "localhost:6379",
		},
	}
}

// NewConfig загружает конфигурацию приложения: дефолты, .env, окружение и флаги командной строки.
// Ключи API здесь не проверяются, см. ResolveCredentials.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (*Config, error) {
	// Стартуем с дефолтов, затем перекрываем окружением и флагами
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.StringVar(&cfg.TextProvider, "text-provider", cfg.TextProvider, "генератор текста: openai|stub")
	fs.StringVar(&cfg.ImageProvider, "image-provider", cfg.ImageProvider, "генератор изображений: openai|gemini|stub")
	fs.StringVar(&cfg.OpenAI.TextModel, "text-model", cfg.OpenAI.TextModel, "модель OpenAI для текста")
	fs.Float64Var(&cfg.OpenAI.Temperature, "text-temperature", cfg.OpenAI.Temperature, "temperature для текстовой модели")
	fs.StringVar(&cfg.OpenAI.ImageModel, "image-model", cfg.OpenAI.ImageModel, "модель OpenAI для изображений")
	fs.StringVar(&cfg.OpenAI.ImageSize, "image-size", cfg.OpenAI.ImageSize, "размер изображения, напр. 1024x1024")
	fs.StringVar(&cfg.Gemini.ImageModel, "gemini-image-model", cfg.Gemini.ImageModel, "модель Gemini для изображений")
	fs.StringVar(&cfg.HTTP.BindAddr, "http-bind-addr", cfg.HTTP.BindAddr, "адрес веб-сервера (напр. 127.0.0.1:8501)")
	fs.StringVar(&cfg.ResultLanguage, "result-language", cfg.ResultLanguage, "язык описания дизайна")
	fs.IntVar(&cfg.GenerationTimeoutSeconds, "generation-timeout-seconds", cfg.GenerationTimeoutSeconds, "таймаут одного запроса генерации в секундах")
	fs.StringVar(&cfg.QuestionsFile, "questions-file", cfg.QuestionsFile, "YAML-файл с вопросами (пусто = встроенные)")
	fs.StringVar(&cfg.SecretsFile, "secrets-file", cfg.SecretsFile, "YAML-файл с ключами API")
	fs.StringVar(&cfg.ShareBaseURL, "share-base-url", cfg.ShareBaseURL, "базовый URL ссылки «поделиться»")
	// Сессии
	fs.StringVar(&cfg.Session.Backend, "session-backend", cfg.Session.Backend, "хранилище сессий: memory|redis")
	fs.IntVar(&cfg.Session.TTLSeconds, "session-ttl-seconds", cfg.Session.TTLSeconds, "время жизни сессии в секундах")
	fs.StringVar(&cfg.Session.RedisAddr, "redis-addr", cfg.Session.RedisAddr, "адрес Redis")
	fs.IntVar(&cfg.Session.RedisDB, "redis-db", cfg.Session.RedisDB, "номер базы Redis")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.TextProvider = strings.ToLower(strings.TrimSpace(cfg.TextProvider))
	cfg.ImageProvider = strings.ToLower(strings.TrimSpace(cfg.ImageProvider))
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))

	// От таймаута зависят и клиент OpenAI, и WriteTimeout сервера
	if cfg.GenerationTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("generation timeout must be positive, got %d", cfg.GenerationTimeoutSeconds)
	}
	if cfg.Session.TTLSeconds <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %d", cfg.Session.TTLSeconds)
	}
	return cfg, nil
}

// NeedsOpenAI сообщает, использует ли какой-либо генератор OpenAI.
func (c *Config) NeedsOpenAI() bool {
	return c.TextProvider == ProviderOpenAI || c.ImageProvider == ProviderOpenAI
}
