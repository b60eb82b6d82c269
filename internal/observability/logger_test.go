package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/cityinfo-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	ctx := context.Background()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger = NewLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.Same(t, logger, slog.Default())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.DistrictsWritten.Set(3)

	path := filepath.Join(t.TempDir(), "cityinfo.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "cityinfo_districts_written 3")
}
