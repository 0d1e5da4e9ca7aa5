package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLoggerAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentStore)

	logger.Info("hello", FieldCount, 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "store", rec[FieldComponent])
	assert.Equal(t, float64(3), rec[FieldCount])
	assert.Equal(t, "hello", rec["msg"])
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithOperation(OpSave).WithError(errors.New("boom")).WithError(nil).WithComponent(ComponentHTTP)
	assert.Equal(t, OpSave, f[FieldOperation])
	assert.Equal(t, "boom", f[FieldError])

	slice := f.ToSlice()
	assert.Len(t, slice, 4, "component is left to the logger")
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	logger := Discard().WithComponent(ComponentCache)
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
