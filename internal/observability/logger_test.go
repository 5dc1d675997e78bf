package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelWarn)
	logger.SetOutput(&buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible warning")
	logger.Errorf("visible %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] visible warning")
	assert.Contains(t, out, "[ERROR] visible error")
}

func TestLoggerFieldsAreSortedAndInherited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo)
	logger.SetOutput(&buf)

	child := logger.WithField("component", "sync").WithField("attempt", 2)
	child.Info("issued batch")

	assert.Contains(t, buf.String(), "issued batch attempt=2 component=sync")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}
