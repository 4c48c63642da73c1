package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	log := With("download")
	log.Info().Str("key", "a_b").Msg("miss")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "download", entry["component"])
	assert.Equal(t, "a_b", entry["key"])
	assert.Equal(t, "miss", entry["message"])
}

func TestInitLevels(t *testing.T) {
	prev := SetLogger(zerolog.Nop())
	t.Cleanup(func() { SetLogger(prev) })

	Init(false, false)
	assert.Equal(t, zerolog.WarnLevel, With("test").GetLevel())

	Init(true, true)
	assert.Equal(t, zerolog.DebugLevel, With("test").GetLevel())
}
