package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name:   "debug level",
			config: &logging.Config{Level: "debug", Format: "json"},
			check: func(t *testing.T, output string) {
				assert.Contains(t, output, `"level":"debug"`)
			},
		},
		{
			name:   "error level only",
			config: &logging.Config{Level: "error", Format: "json"},
			check: func(t *testing.T, output string) {
				assert.NotContains(t, output, `"level":"info"`)
				assert.Contains(t, output, `"level":"error"`)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestNewLoggerFromConfigFileOutput(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "labelsync.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "info",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "reconciler"},
	})
	logger.Info().Msg("written to file")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
	assert.Contains(t, string(content), `"component":"reconciler"`)
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithSplit(ctx, "train")
	ctx = logging.WithDirectory(ctx, "labels/train")
	ctx = logging.WithOperation(ctx, "reconcile")

	logging.FromContext(ctx).Info().Msg("scanning")

	tl.AssertContains(t, `"split":"train"`)
	tl.AssertContains(t, `"dir":"labels/train"`)
	tl.AssertContains(t, `"operation":"reconcile"`)
	tl.AssertContains(t, "scanning")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.Ctx(context.Background()))
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Warn().Msg("message 2")

	assert.Equal(t, 2, tl.Count())
	assert.True(t, strings.Contains(tl.Output(), "message 2"))

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}
