package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/semantic-retrieval/config"
	"github.com/upb/semantic-retrieval/services"
	"go.uber.org/zap/zaptest"
)

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("development console logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "console")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "invalid")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("defaults when not set", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VECTOR_STORE_BACKEND", "postgrest")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EMBEDDING_MODE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid environment", func(t *testing.T) {
		setValidEnv(t)

		cfg, err := loadConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, config.BackendPostgREST, cfg.VectorStore.Backend)
	})

	t.Run("missing provider credential", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("OPENAI_API_KEY", "")

		cfg, err := loadConfig(context.Background())
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.True(t, services.IsConfigurationError(err))
		assert.ErrorIs(t, err, config.ErrMissingCredential)
		assert.Equal(t, "ConfigurationError", services.GetErrorType(err).Kind())
	})

	t.Run("missing store credential", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

		_, err := loadConfig(context.Background())
		require.Error(t, err)
		assert.True(t, services.IsConfigurationError(err))
		assert.ErrorIs(t, err, config.ErrMissingCredential)
	})

	t.Run("invalid value", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("EMBEDDING_MODE", "completion")

		_, err := loadConfig(context.Background())
		require.Error(t, err)
		assert.True(t, services.IsConfigurationError(err))
		assert.NotErrorIs(t, err, config.ErrMissingCredential)
	})
}

func testServerConfig() *config.Config {
	cfg := &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
	}
	return cfg
}

func TestNewServer(t *testing.T) {
	cfg := testServerConfig()
	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Greater(t, srv.WriteTimeout, cfg.Server.WriteTimeout)
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := testServerConfig()
	srv := newServer(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, cfg, zaptest.NewLogger(t)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServe_ListenFailure(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.TLS.Enabled = true
	cfg.Server.TLS.CertFile = "testdata/missing-cert.pem"
	cfg.Server.TLS.KeyFile = "testdata/missing-key.pem"
	srv := newServer(cfg, http.NotFoundHandler())

	err := serve(context.Background(), srv, cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}
