package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon_studio/config"
	"icon_studio/logging"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(config.LogConfig{Level: "warn", Format: "json"}, &buf, false)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "code", "E_EXTRACTION_FALLBACK")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "E_EXTRACTION_FALLBACK", entry["code"])
}

func TestNew_TextVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(config.LogConfig{Level: "error"}, &buf, true)
	require.NoError(t, err)

	logger.Debug("trace", "k", 1)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=trace")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := logging.New(config.LogConfig{Format: "xml"}, nil, false)
	assert.Error(t, err)
}
