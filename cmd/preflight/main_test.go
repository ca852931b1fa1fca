package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/preflight/internal/types"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, "./preflight.json", cfg.ConfigPath)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.FailFast)
	assert.False(t, cfg.SystemInfo)
	assert.Empty(t, cfg.Environment)
}

func TestParseFlags_CategoryAndOutputFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--config", "deploy.json",
		"--network-only", "--disk-only",
		"--environment", "staging",
		"--output", "report.json",
		"--fail-fast",
	})
	require.NoError(t, err)

	assert.Equal(t, "deploy.json", cfg.ConfigPath)
	assert.True(t, cfg.NetworkOnly)
	assert.True(t, cfg.DiskOnly)
	assert.False(t, cfg.ServicesOnly)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "report.json", cfg.OutputFile)
	assert.True(t, cfg.FailFast)
}

func TestParseFlags_Shorthands(t *testing.T) {
	cfg, err := parseFlags([]string{"-c", "x.yaml", "-e", "prod", "-q", "-v"})
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", cfg.ConfigPath)
	assert.Equal(t, "prod", cfg.Environment)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.Verbose)
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	_, err := parseFlags([]string{"--bogus"})
	assert.Error(t, err)
}

func TestSelectedCategories(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []types.Category
	}{
		{"no flags runs everything", Config{}, nil},
		{"single flag", Config{DiskOnly: true}, []types.Category{types.CategoryStorage}},
		{
			"combined flags keep fixed order",
			Config{WinRMOnly: true, NetworkOnly: true, SoftwareOnly: true},
			[]types.Category{types.CategoryNetwork, types.CategorySoftware, types.CategoryRemote},
		},
		{
			"all flags",
			Config{NetworkOnly: true, DiskOnly: true, ServicesOnly: true, SoftwareOnly: true, WinRMOnly: true},
			types.CategoryOrder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectedCategories(&tt.cfg))
		})
	}
}

func TestSystemInfoOnly(t *testing.T) {
	assert.True(t, systemInfoOnly(&Config{SystemInfo: true}))
	assert.False(t, systemInfoOnly(&Config{SystemInfo: true, NetworkOnly: true}),
		"category flags keep the run going; system info is collected anyway")
	assert.False(t, systemInfoOnly(&Config{}))
}

func TestRun_QuietStillWritesRequestedReportFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "preflight.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{}`), 0o644))
	outPath := filepath.Join(dir, "report.json")

	code := run(&Config{
		ConfigPath: cfgPath,
		OutputFile: outPath,
		Format:     "text",
		Quiet:      true,
	})
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"summary"`)
}

func TestValidateFlags_Format(t *testing.T) {
	assert.Equal(t, -1, validateFlags(&Config{Format: "text"}))
	assert.Equal(t, -1, validateFlags(&Config{Format: "json"}))
	assert.Equal(t, -1, validateFlags(&Config{Format: "jsonl"}))
	assert.Equal(t, 1, validateFlags(&Config{Format: "xml"}))
}

func TestExitCode(t *testing.T) {
	pass := &types.Report{Summary: types.Summary{OverallStatus: types.StatusPass}}
	warn := &types.Report{Summary: types.Summary{OverallStatus: types.StatusWarn}}
	fail := &types.Report{Summary: types.Summary{OverallStatus: types.StatusFail}}

	assert.Equal(t, 0, exitCode(pass))
	assert.Equal(t, 0, exitCode(warn), "WARN does not gate the pipeline")
	assert.Equal(t, 1, exitCode(fail))
}

func TestValidateOutputPath(t *testing.T) {
	assert.NoError(t, validateOutputPath("report.json"))
	assert.NoError(t, validateOutputPath("/tmp/report.json"))
	assert.Error(t, validateOutputPath("/etc/report.json"))
	assert.Error(t, validateOutputPath("/usr/share/report.json"))
}
