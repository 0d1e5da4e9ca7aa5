package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/config"
	"wallet/internal/log"
	"wallet/internal/storage"
)

func testConfig(t *testing.T, port string) *config.Config {
	t.Helper()
	return &config.Config{
		Addr:               "127.0.0.1",
		Port:               port,
		DataBackend:        config.BackendSQLite,
		SQLiteDBPath:       filepath.Join(t.TempDir(), "wallet.db"),
		RateLimitPerMinute: 60,
		SummaryCacheTTL:    time.Minute,
	}
}

func TestRunListenFailureReturnsError(t *testing.T) {
	cfg := testConfig(t, "99999")

	err := run(context.Background(), cfg, log.Discard())
	require.Error(t, err)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	require.NoError(t, err)
	assert.NoError(t, repo.Close())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, log.Discard()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunBackendFailure(t *testing.T) {
	cfg := testConfig(t, "0")
	cfg.DataBackend = "postgres"

	err := run(context.Background(), cfg, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize storage")
}
