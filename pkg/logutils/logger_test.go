package logutils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "sitetrackr.log")

	l, closer, err := New("info", file)
	require.NoError(t, err)

	l.Info().Str("item", "abc").Msg("saved")
	l.Debug().Msg("filtered out")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "saved", entry["message"])
	assert.Equal(t, "abc", entry["item"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_AppendsAcrossRuns(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sitetrackr.log")

	for range 2 {
		l, closer, err := New("info", file)
		require.NoError(t, err)
		l.Info().Msg("run")
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", "")
	require.Error(t, err)
}

func TestNew_EmptyFileDiscards(t *testing.T) {
	l, closer, err := New("debug", "")
	require.NoError(t, err)
	defer closer()
	l.Info().Msg("nowhere")
}
