package main

import (
	"EyewearAdvisor/internal/ai"
	"EyewearAdvisor/internal/config"
	"EyewearAdvisor/internal/service/diagnosis"
	"EyewearAdvisor/internal/service/session"
	"EyewearAdvisor/internal/service/survey"
	"EyewearAdvisor/internal/web"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	// создаём предустановленный регистратор zap
	var logger *zap.Logger
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()

	// Graceful shutdown on Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, sugar)
	stop()
	if err != nil {
		sugar.Errorw("Failed to start", "error", err)
	}
	//сброс буфера логгера
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run поднимает сервер и ждёт отмены ctx. Ошибка конфигурации не останавливает запуск:
// сервер отдаёт только страницу ошибки. Остальные ошибки запуска возвращаются.
func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"TextProvider", cfg.TextProvider,
		"ImageProvider", cfg.ImageProvider,
		"SessionBackend", cfg.Session.Backend,
		"BindAddr", cfg.HTTP.BindAddr,
	)

	timeout := time.Duration(cfg.GenerationTimeoutSeconds) * time.Second
	handler, cleanup, err := build(ctx, cfg, sugar)
	if err != nil {
		if !config.IsConfigurationError(err) {
			return err
		}
		// Без ключа анкета не показывается: любая страница выводит ошибку.
		sugar.Errorw("Configuration error, serving error page only", "error", err)
		handler, err = web.NewHandler(web.Options{Logger: sugar, StartupErr: err})
		if err != nil {
			return fmt.Errorf("create handler: %w", err)
		}
	}
	if cleanup != nil {
		defer cleanup()
	}

	srv := web.NewServer(cfg.HTTP.BindAddr, handler, 2*timeout+10*time.Second, sugar)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start web server on %s: %w", cfg.HTTP.BindAddr, err)
	}
	sugar.Infow("Open in browser", "url", "http://"+srv.Addr()+"/")

	<-ctx.Done()
	if err := srv.Stop(context.Background()); err != nil {
		sugar.Warnw("Web server stop error", "error", err)
	}
	sugar.Infow("server stopped")
	return nil
}

// build собирает зависимости обработчика. Ошибки конфигурации возвращаются как *config.ConfigurationError.
func build(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*web.Handler, func(), error) {
	if err := cfg.ResolveCredentials(); err != nil {
		return nil, nil, err
	}

	engine := survey.Default()
	if cfg.QuestionsFile != "" {
		questions, err := survey.LoadQuestions(cfg.QuestionsFile)
		if err != nil {
			return nil, nil, &config.ConfigurationError{Message: "質問ファイルを読み込めません", Err: err}
		}
		if engine, err = survey.NewEngine(questions); err != nil {
			return nil, nil, &config.ConfigurationError{Message: "質問ファイルが正しくありません", Err: err}
		}
	}

	text, image, err := generators(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	diagnoser := diagnosis.New(engine, text, image, diagnosis.Options{
		Language: cfg.ResultLanguage,
		Timeout:  time.Duration(cfg.GenerationTimeoutSeconds) * time.Second,
	}, logger)

	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	var (
		store   session.Store
		cleanup func()
	)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rs, err := session.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		}, ttl)
		if err != nil {
			return nil, nil, err
		}
		store = rs
		cleanup = func() {
			if err := rs.Close(); err != nil {
				logger.Warnw("Failed to close redis", "error", err)
			}
		}
	default:
		ms := session.NewMemoryStore(ttl, logger)
		go ms.Run(ctx, time.Minute)
		store = ms
	}

	handler, err := web.NewHandler(web.Options{
		Engine:       engine,
		Diagnoser:    diagnoser,
		Store:        store,
		Locker:       session.NewLocker(),
		ShareBaseURL: cfg.ShareBaseURL,
		SessionTTL:   ttl,
		Logger:       logger,
	})
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, err
	}
	return handler, cleanup, nil
}

func generators(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (ai.TextGenerator, ai.ImageGenerator, error) {
	stub := ai.NewStubClient()
	var text ai.TextGenerator = stub
	var image ai.ImageGenerator = stub

	if cfg.NeedsOpenAI() {
		oClient := ai.NewOpenAIClient(cfg)
		if cfg.TextProvider == config.ProviderOpenAI {
			text = ai.NewTextClient(&oClient, cfg, logger)
		}
		if cfg.ImageProvider == config.ProviderOpenAI {
			image = ai.NewImageClient(&oClient, cfg, logger)
		}
	}
	if cfg.ImageProvider == config.ProviderGemini {
		g, err := ai.NewGeminiImageClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		image = g
	}
	return text, image, nil
}
