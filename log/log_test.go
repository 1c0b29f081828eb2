package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelsFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WarnLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("warned")
	logger.Error().Msg("errored")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN | warned")
	assert.Contains(t, out, "ERROR | errored")
}

func TestLoggerMsgf(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel)

	logger.Info().Msgf("answer=%d", 42)
	assert.Contains(t, buf.String(), "answer=42")
}

func TestLoggerErr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel)

	logger.Error().Err(errors.New("kaput")).Msg("failed")
	assert.Contains(t, buf.String(), "failed error=kaput")
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel)
	assert.Equal(t, InfoLevel, logger.GetLevel())

	logger.SetLevel(ErrorLevel)
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "FATAL", FatalLevel.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}

func TestConsoleWriterColorizesLevel(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf)

	_, err := w.Write([]byte("2026-01-01 00:00:00 | ERROR | boom\n"))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), colorRed+"ERROR"+colorReset)
}

func TestConsoleWriterPassthrough(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf)

	_, err := w.Write([]byte("not a log line\n"))
	assert.NoError(t, err)
	assert.Equal(t, "not a log line\n", buf.String())

	buf.Reset()
	w.NoColor = true
	_, _ = w.Write([]byte("2026-01-01 00:00:00 | ERROR | boom\n"))
	assert.NotContains(t, buf.String(), colorRed)
}
