package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDebugSkipsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	log, err := New(Options{File: path})
	require.NoError(t, err)
	log.Info("hello")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewDebugWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	log, err := New(Options{Debug: true, File: path})
	require.NoError(t, err)
	log.Debug("pad hit")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Debug logging started")
	assert.Contains(t, string(data), "pad hit")
}
