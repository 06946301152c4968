package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrous-networks/asicman/logging"
)

func TestFilteringHandlerEnabled(t *testing.T) {
	spec := &logging.Spec{
		BaseLevel: logging.LevelWarn,
		Components: map[string]logging.Level{
			"engine": logging.LevelDebug,
			"store":  logging.LevelTrace,
		},
	}

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelTrace.ToSlog()})
	handler := logging.NewFilteringHandler(inner, spec)

	// Base handler (no component) uses warn level.
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))

	// Engine component uses debug level.
	engineHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "engine")})
	assert.True(t, engineHandler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, engineHandler.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, engineHandler.Enabled(context.Background(), logging.LevelTrace.ToSlog()))

	// Store component uses trace level.
	storeHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "store")})
	assert.True(t, storeHandler.Enabled(context.Background(), logging.LevelTrace.ToSlog()))
	assert.True(t, storeHandler.Enabled(context.Background(), slog.LevelDebug))
}

func TestFilteringHandlerHandle(t *testing.T) {
	spec := &logging.Spec{
		BaseLevel: logging.LevelWarn,
		Components: map[string]logging.Level{
			"engine": logging.LevelDebug,
		},
	}

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelTrace.ToSlog()})
	logger := slog.New(logging.NewFilteringHandler(inner, spec))

	logger.Info("suppressed at base level")
	assert.Empty(t, buf.String())

	logger.Warn("visible at base level")
	assert.Contains(t, buf.String(), "visible at base level")

	buf.Reset()
	engineLogger := logger.With("component", "engine")
	engineLogger.Debug("engine debug visible")
	assert.Contains(t, buf.String(), "engine debug visible")
}

func TestParseSpec(t *testing.T) {
	spec, err := logging.ParseSpec("warn,engine=debug,store=trace")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, spec.BaseLevel)
	assert.Equal(t, logging.LevelDebug, spec.Components["engine"])
	assert.Equal(t, logging.LevelTrace, spec.Components["store"])

	_, err = logging.ParseSpec("engine=debug,warn")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "must be first"))

	spec, err = logging.ParseSpec("")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelInfo, spec.BaseLevel)
}

func TestSpecRoundTrip(t *testing.T) {
	spec, err := logging.ParseSpec("info,engine=debug,sim=trace")
	require.NoError(t, err)

	parsed, err := logging.ParseSpec(spec.String())
	require.NoError(t, err)
	assert.Equal(t, spec.BaseLevel, parsed.BaseLevel)
	assert.Equal(t, spec.Components, parsed.Components)
}
