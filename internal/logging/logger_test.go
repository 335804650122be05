package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Level: "warn", Format: "json", Out: &buf}), "session")
	logger.Info().Msg("dropped")
	logger.Warn().Str("key", "ecoImpactUser").Msg("write failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &ev))
	assert.Equal(t, "warn", ev["level"])
	assert.Equal(t, "session", ev["component"])
	assert.Equal(t, "ecoImpactUser", ev["key"])
	assert.Contains(t, ev, "time")
}

func TestNew_DefaultsAndConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "loud", Out: &buf})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}
