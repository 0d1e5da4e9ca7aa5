package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/config"
	"wallet/internal/persistence"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", DataDirectory: "d"}, cfg)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: "nope"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Len(t, BackendTypes(), 2)
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wallet.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	require.NoError(t, res.KV.Set(ctx, persistence.CurrencyKey, "EUR"))
	v, found, err := res.KV.Get(ctx, persistence.CurrencyKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "EUR", v)
}

func TestCreateMemoryBackendSeedsFromFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "currency.txt"), []byte("GBP\n"), 0o644))

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	assert.NoError(t, res.Close())

	code := persistence.NewSlots(res.KV, nil).LoadCurrencyCode(ctx)
	assert.Equal(t, "GBP", code)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
}
