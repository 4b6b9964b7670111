package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
)

func TestNewWriter_JSONWithLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(config.Config{AppEnv: "prod", LogLevel: "warn"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Int("issue", 4).Msg("issue skipped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, 4.0, entry["issue"])
	assert.Contains(t, entry, "time")
}

func TestNewWriter_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(config.Config{AppEnv: "prod", LogLevel: "loud"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewWriter_DevConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(config.Config{AppEnv: "dev"}, &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
