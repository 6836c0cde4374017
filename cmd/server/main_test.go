package main

import (
	"EyewearAdvisor/internal/config"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.TextProvider = config.ProviderStub
	cfg.ImageProvider = config.ProviderStub
	cfg.SecretsFile = filepath.Join(t.TempDir(), "absent.yaml")
	cfg.HTTP.BindAddr = "127.0.0.1:0"
	return cfg
}

func TestRun_PortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := stubConfig(t)
	cfg.HTTP.BindAddr = ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = run(ctx, cfg, zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "start web server")
}

func TestRun_RedisUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := stubConfig(t)
	cfg.Session.Backend = config.SessionBackendRedis
	cfg.Session.RedisAddr = addr

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = run(ctx, cfg, zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "redis ping")
}

func TestRun_ConfigurationErrorStillServes(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := stubConfig(t)
	cfg.TextProvider = config.ProviderOpenAI
	cfg.OpenAI.APIKey = ""

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop().Sugar()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
