package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	"github.com/arnavsurve/virtuoso-converter/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputTarget(t *testing.T) {
	cfg := core.DefaultConfig()

	tests := []struct {
		name  string
		cmd   ConvertCmd
		count int
		want  string
	}{
		{"config default", ConvertCmd{}, 1, core.DefaultOutputFile},
		{"explicit output", ConvertCmd{Output: "out/login.json"}, 1, "out/login.json"},
		{"output dir", ConvertCmd{OutputDir: "steps"}, 1, filepath.Join("steps", "Test_Login_virtuoso_steps.json")},
		{"s3 output dir", ConvertCmd{OutputDir: "s3://qa/steps"}, 2, "s3://qa/steps/Test_Login_virtuoso_steps.json"},
		{"several inputs", ConvertCmd{}, 3, "Test_Login_virtuoso_steps.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.outputTarget("tests/Test_Login.py", tt.count, cfg))
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := core.DefaultConfig()
	cmd := ConvertCmd{PollInterval: "250ms", Timeout: "0", MaxAttempts: 12}
	require.NoError(t, cmd.applyOverrides(cfg))

	interval, timeout, err := cfg.PollBounds()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, interval)
	assert.Equal(t, time.Duration(0), timeout)
	assert.Equal(t, 12, cfg.Polling.MaxAttempts)

	bad := ConvertCmd{PollInterval: "fast"}
	assert.Error(t, bad.applyOverrides(core.DefaultConfig()))
}

func TestLoadConfig(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := loadConfig(core.DefaultConfigFile, log.Nop())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfig(), cfg)

	_, err = loadConfig("custom.yml", log.Nop())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(core.DefaultConfigFile, []byte("polling:\n  max_attempts: 4\n"), 0644))
	cfg, err = loadConfig(core.DefaultConfigFile, log.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Polling.MaxAttempts)
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`[
  {"checkpointId": "c1", "stepIndex": 0, "parsedStep": {"action": "NAVIGATE", "target": {"url": "https://shop.test"}, "meta": {}}}
]`), 0644))
	assert.NoError(t, (&ValidateCmd{File: valid}).Run())

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[{"checkpointId": "c1", "stepIndex": 0, "parsedStep": {"action": "CLICK", "target": "t", "meta": {}}}]`), 0644))
	assert.Error(t, (&ValidateCmd{File: invalid}).Run())

	assert.Error(t, (&ValidateCmd{File: filepath.Join(dir, "missing.json")}).Run())
}

// chdirForTest changes the working directory to dir and restores it when the
// test finishes (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
