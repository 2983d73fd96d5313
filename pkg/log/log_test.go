package log

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want zerolog.Level
	}{
		{DebugLevel, zerolog.DebugLevel},
		{InfoLevel, zerolog.InfoLevel},
		{WarnLevel, zerolog.WarnLevel},
		{ErrorLevel, zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	l := WithObject("resource", "vip")
	l.Info().Msg("created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resource", entry["kind"])
	assert.Equal(t, "vip", entry["object"])
	assert.Equal(t, "created", entry["message"])
}

func TestInitFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "burrow.log")
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf, File: file})

	l := WithHost("n1")
	l.Debug().Msg("rotated")
	assert.Contains(t, buf.String(), `"host":"n1"`)
	assert.FileExists(t, file)
}
