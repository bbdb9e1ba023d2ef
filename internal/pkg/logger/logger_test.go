package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(LogOption{Format: "json", LogDir: dir, Level: "debug"}))

	Infof("[LoggerTest] hello %d", 1)
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, defaultLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[LoggerTest] hello 1")
}

func TestInitLogger_Invalid(t *testing.T) {
	assert.Error(t, InitLogger(LogOption{Format: "xml"}))
	assert.Error(t, InitLogger(LogOption{Level: "verbose"}))
	assert.NoError(t, InitLogger(LogOption{}))
}
