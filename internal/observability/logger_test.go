// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/config"
)

// initForTest resets the singleton and initializes the logger against an
// in-memory buffer instead of stdout.
func initForTest(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitializeConsoleFormat(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "gazesim-test",
	})

	GetLogger().Info("velocity classifier armed")

	output := buf.String()
	assert.Contains(t, output, "INFO", "output should contain the log level")
	assert.Contains(t, output, "velocity classifier armed")
	assert.Contains(t, output, colorGreen, "info level should be colorized green")
	assert.Contains(t, output, "gazesim-test.", "logger name should carry the dot suffix")
}

func TestInitializeJSONFormat(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "json-test",
	})

	GetLogger().Warn("dwell timer reset", zap.Int("trial", 4))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "json-test", entry["logger"])
	assert.Equal(t, "dwell timer reset", entry["msg"])
	assert.Equal(t, float64(4), entry["trial"])
}

func TestInitializeWritesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "gazesim.log")
	initForTest(t, config.LoggerConfig{
		Level:   "debug",
		Format:  "json",
		LogFile: logPath,
		MaxSize: 1,
	})

	GetLogger().Error("this should go to the file")
	Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "this should go to the file")
}

func TestInitializeOnlyOnce(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{Level: "info", Format: "console", ServiceName: "first"})

	// A second initialization must be a no-op.
	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "second"}, zapcore.AddSync(buf))

	GetLogger().Info("still the first logger")
	assert.True(t, strings.Contains(buf.String(), "first"))
	assert.False(t, strings.Contains(buf.String(), "second"))
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger, "uninitialized GetLogger must return a usable fallback")
}

func TestGetLoggerReturnsGlobal(t *testing.T) {
	initForTest(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "global"})
	assert.Equal(t, globalLogger.Load(), GetLogger())
}
