package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("writes JSON at the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "warn", Format: "json", Output: &buf})

		log.Info("dropped")
		log.Warn("alias lookup failed", zap.String("ingredient", "jeera"))
		require.NoError(t, log.Sync())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "alias lookup failed", entry["msg"])
		assert.Equal(t, "jeera", entry["ingredient"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "loud", Output: &buf})

		log.Debug("hidden")
		log.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("console format is not JSON", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "console", Output: &buf})

		log.Info("table loaded")

		assert.Contains(t, buf.String(), "table loaded")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}
