package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Chative-core-poc-v1/salesbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	defer Init(LoggerOpts{Environment: core.Testing})

	Debug().Msg("hidden")
	Info().Str("intent", "greeting").Msg("classified")

	line := bytes.TrimSpace(buf.Bytes())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(line, &entry))
	assert.Equal(t, "classified", entry["message"])
	assert.Equal(t, "greeting", entry["intent"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	defer Init(LoggerOpts{Environment: core.Testing})

	l := Component("dialogue")
	l.Info().Msg("transition")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "dialogue", entry["component"])
}
