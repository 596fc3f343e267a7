package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Info().Msg("dropped")
	Warn().Str("email", "a@acme.edu").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "careercompass", entry["service"])
	assert.Equal(t, "a@acme.edu", entry["email"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	l := WithFields(map[string]interface{}{"component": "hub", "clients": 3})
	l.Debug().Msg("tick")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hub", entry["component"])
	assert.EqualValues(t, 3, entry["clients"])
	assert.Equal(t, "debug", entry["level"])
}
