// -- cmd/cmd_test.go --
package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/observability"
)

// executeCommand runs the root command with args against fresh global state.
// Commands share package-level config and viper singletons, so these tests
// must not run in parallel.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	observability.ResetForTest()
	cfgFile = ""
	appConfig = nil
	simulateOutputDir = "out"
	simulateSeed = 0
	simulateModality = ""
	simulateBlocks = 0
	replayOutput = "-"
	replaySeed = 0

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
logger:
  level: error
  format: console
trial:
  blocks: 1
  ring_count: 3
  dwell_ms: 300
  timeout_ms: 4000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestSimulateWritesRunArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "run")
	_, err := executeCommand(t,
		"simulate",
		"-c", writeTestConfig(t),
		"-o", outDir,
		"--seed", "12345",
	)
	require.NoError(t, err)

	trials, err := os.ReadFile(filepath.Join(outDir, "trials.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(trials)), "\n")
	assert.Len(t, lines, 4, "header plus one row per trial (1 block x 3 targets)")
	assert.Contains(t, lines[0], "rt_ms")

	samples, err := os.ReadFile(filepath.Join(outDir, "samples.csv"))
	require.NoError(t, err)
	assert.Greater(t, len(strings.Split(strings.TrimSpace(string(samples)), "\n")), 4,
		"samples trace should carry many per-tick rows")

	summaryRaw, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(summaryRaw, &summary))
	assert.Equal(t, float64(3), summary["trials"])
}

func TestSimulateRejectsInvalidModalityOverride(t *testing.T) {
	_, err := executeCommand(t,
		"simulate",
		"-c", writeTestConfig(t),
		"-o", filepath.Join(t.TempDir(), "run"),
		"--modality", "voice",
	)
	require.Error(t, err)
}

func TestReplayConvertsPointerTrace(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "pointer.csv")
	require.NoError(t, os.WriteFile(tracePath, []byte("ts_ms,x,y\n0,100,100\n16,110,100\n32,120,100\n"), 0o644))
	outPath := filepath.Join(t.TempDir(), "gaze.csv")

	_, err := executeCommand(t,
		"replay", tracePath,
		"-c", writeTestConfig(t),
		"-o", outPath,
		"--seed", "7",
	)
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, 4, "header plus one gaze row per pointer sample")
	assert.Contains(t, lines[0], "gaze_x")
}

func TestReplayRejectsMissingFile(t *testing.T) {
	_, err := executeCommand(t,
		"replay", filepath.Join(t.TempDir(), "does-not-exist.csv"),
		"-c", writeTestConfig(t),
	)
	require.Error(t, err)
}
