package logger

import (
	"bytes"
	"testing"

	"github.com/beka-birhanu/vinom-drift/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("rejects empty prefix", func(t *testing.T) {
		_, err := New("", config.ColorCyan, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyPrefix)
	})

	t.Run("writes prefix level and sorted fields", func(t *testing.T) {
		var out bytes.Buffer
		l, err := New("SESSION", config.ColorCyan, &out)
		require.NoError(t, err)

		l.WithFields(map[string]any{"tick": 3, "agent": "(0,0)"}).Info("stepped")

		line := out.String()
		assert.Contains(t, line, "[SESSION]")
		assert.Contains(t, line, "[INFO]")
		assert.Contains(t, line, "stepped agent=(0,0) tick=3\n")
	})

	t.Run("honours level", func(t *testing.T) {
		var out bytes.Buffer
		l, err := New("APP", config.ColorGreen, &out)
		require.NoError(t, err)

		l.Debug("hidden")
		assert.Empty(t, out.String())

		require.NoError(t, l.SetLevel("debug"))
		l.Debug("shown")
		assert.Contains(t, out.String(), "[DEBUG]")

		assert.Error(t, l.SetLevel("chatty"))
	})

	t.Run("warnings and errors", func(t *testing.T) {
		var out bytes.Buffer
		l, err := New("APP", config.ColorGreen, &out)
		require.NoError(t, err)

		l.Warning("careful")
		l.Error("broken")
		assert.Contains(t, out.String(), "[WARNING]")
		assert.Contains(t, out.String(), "careful")
		assert.Contains(t, out.String(), "[ERROR]")
		assert.Contains(t, out.String(), "broken")
	})
}
