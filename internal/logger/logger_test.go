package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "test message arg")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("test message")

	assert.Empty(t, buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("Retrieval")

	assert.Contains(t, buf.String(), "=== Retrieval ===")
}

func TestInfo_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Info("hidden")

	assert.Empty(t, buf.String())
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Warn("index degraded: %s", "fallback")

	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "index degraded: fallback")
}

func TestError_IncludesCause(t *testing.T) {
	buf := capture(t, false)

	Error(errors.New("disk full"), "upsert %s", "C1-100")

	assert.Contains(t, buf.String(), "ERR")
	assert.Contains(t, buf.String(), "upsert C1-100")
	assert.Contains(t, buf.String(), "disk full")
}
