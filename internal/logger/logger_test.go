package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebug_SilentByDefault(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Debug("hidden %d", 1)

	assert.Empty(t, buf.String())
}

func TestDebug_PrintsWhenVerbose(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()
	SetVerbose(true)

	Debug("step %d", 3)

	assert.Contains(t, buf.String(), "[DEBUG] step 3")
}

func TestSection_PrintsHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()
	SetVerbose(true)

	Section("Reasoning")

	assert.Contains(t, buf.String(), "=== Reasoning ===")
}

func TestLevelPrefixes(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()
	SetVerbose(true)

	Info("indexed %d chunks", 5)
	Warn("skipping %s", "bad.pdf")

	assert.Contains(t, buf.String(), "[INFO] indexed 5 chunks")
	assert.Contains(t, buf.String(), "[WARN] skipping bad.pdf")
}

func TestIsVerbose(t *testing.T) {
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
