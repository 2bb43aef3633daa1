package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	adapter.Info("image sent", "start", "0x0300", "bytes", 7424)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "image sent", entry["message"])
	assert.Equal(t, "0x0300", entry["start"])
	assert.InDelta(t, 7424, entry["bytes"], 0)
}

func TestAdapterLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	adapter.Debug("handshake acknowledged")
	assert.Empty(t, buf.String())

	adapter.Error("verify failed", "error", "mismatch")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"error":"mismatch"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "picboot.log")

	var console bytes.Buffer
	logger, err := Setup(Options{
		Level:   zerolog.InfoLevel,
		File:    file,
		Console: &console,
		NoColor: true,
	})
	require.NoError(t, err)

	logger.Info().Str("port", "/dev/ttyUSB0").Msg("opened")
	logger.Debug().Msg("hidden")

	assert.Contains(t, console.String(), "opened")
	assert.Contains(t, console.String(), "port=/dev/ttyUSB0")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"opened"`)
}
