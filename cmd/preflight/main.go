// Package main is the entry point for preflight, which validates the ground
// before the pipeline lands on it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/opsgate/preflight/internal/config"
	"github.com/opsgate/preflight/internal/logging"
	"github.com/opsgate/preflight/internal/output"
	"github.com/opsgate/preflight/internal/runner"
	"github.com/opsgate/preflight/internal/sysinfo"
	"github.com/opsgate/preflight/internal/types"
)

// version is set at build time via -ldflags. The default is a dev fallback
// for plain `go install` or `go run` usage.
var version = "1.2.0"

// Config holds all parsed CLI flag values.
type Config struct {
	ConfigPath   string
	OutputFile   string
	Format       string
	NetworkOnly  bool
	DiskOnly     bool
	ServicesOnly bool
	SoftwareOnly bool
	WinRMOnly    bool
	SystemInfo   bool
	Environment  string
	Verbose      bool
	FailFast     bool
	NoColor      bool
	Quiet        bool
	Validate     string
	LogDir       string
}

// parseFlags parses command-line arguments into a Config using a dedicated
// FlagSet, keeping the global flag.CommandLine clean for testability.
func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("preflight", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "./preflight.json", "Path to the validation configuration file")
	fs.StringVar(&cfg.ConfigPath, "c", "./preflight.json", "Path to the validation configuration file (shorthand)")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the JSON report to file")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write the JSON report to file (shorthand)")
	fs.StringVar(&cfg.Format, "format", "text", "Stdout format: text, json, jsonl")
	fs.StringVar(&cfg.Format, "f", "text", "Stdout format (shorthand)")
	fs.BoolVar(&cfg.NetworkOnly, "network-only", false, "Run only network reachability checks")
	fs.BoolVar(&cfg.DiskOnly, "disk-only", false, "Run only disk space checks")
	fs.BoolVar(&cfg.ServicesOnly, "services-only", false, "Run only service state checks")
	fs.BoolVar(&cfg.SoftwareOnly, "software-only", false, "Run only software dependency checks")
	fs.BoolVar(&cfg.WinRMOnly, "winrm-only", false, "Run only remote session checks")
	fs.BoolVar(&cfg.SystemInfo, "system-info", false, "Emit host metadata only and exit")
	fs.StringVar(&cfg.Environment, "environment", "", "Target environment tag for the report")
	fs.StringVar(&cfg.Environment, "e", "", "Target environment tag (shorthand)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging and per-check details")
	fs.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging (shorthand)")
	fs.BoolVar(&cfg.FailFast, "fail-fast", false, "Abort the surrounding pipeline on any FAIL result")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress output, exit code only")
	fs.BoolVar(&cfg.Quiet, "q", false, "Suppress output (shorthand)")
	fs.StringVar(&cfg.Validate, "validate", "", "Validate a configuration file without running checks")
	fs.StringVar(&cfg.LogDir, "log-dir", "", "Directory for rotating debug logs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  preflight: environment readiness validation for pipeline stages\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Usage: preflight [options]\n\n")
		fmt.Fprintf(os.Stderr, "  Options:\n")
		fmt.Fprintf(os.Stderr, "    -c,  --config <path>      Validation configuration file (default: ./preflight.json)\n")
		fmt.Fprintf(os.Stderr, "    -o,  --output <path>      Write the JSON report to file\n")
		fmt.Fprintf(os.Stderr, "    -f,  --format <type>      Stdout format: text, json, jsonl (default: text)\n")
		fmt.Fprintf(os.Stderr, "         --network-only       Run only network reachability checks\n")
		fmt.Fprintf(os.Stderr, "         --disk-only          Run only disk space checks\n")
		fmt.Fprintf(os.Stderr, "         --services-only      Run only service state checks\n")
		fmt.Fprintf(os.Stderr, "         --software-only      Run only software dependency checks\n")
		fmt.Fprintf(os.Stderr, "         --winrm-only         Run only remote session checks\n")
		fmt.Fprintf(os.Stderr, "         --system-info        Emit host metadata only and exit\n")
		fmt.Fprintf(os.Stderr, "    -e,  --environment <tag>  Target environment tag for the report\n")
		fmt.Fprintf(os.Stderr, "    -v,  --verbose            Enable debug logging and per-check details\n")
		fmt.Fprintf(os.Stderr, "         --fail-fast          Abort the surrounding pipeline on any FAIL result\n")
		fmt.Fprintf(os.Stderr, "         --no-color           Disable colored output\n")
		fmt.Fprintf(os.Stderr, "    -q,  --quiet              Suppress output, exit code only\n")
		fmt.Fprintf(os.Stderr, "         --validate <path>    Validate a configuration file without running checks\n")
		fmt.Fprintf(os.Stderr, "         --log-dir <dir>      Directory for rotating debug logs\n")
		fmt.Fprintf(os.Stderr, "\n  Exit code: 0 when overall status is PASS or WARN, 1 on FAIL or error.\n")
		fmt.Fprintf(os.Stderr, "\n  Examples:\n")
		fmt.Fprintf(os.Stderr, "    preflight -c deploy.json                    Full validation sweep\n")
		fmt.Fprintf(os.Stderr, "    preflight --network-only --disk-only       Selected categories only\n")
		fmt.Fprintf(os.Stderr, "    preflight -e staging -o report.json        Tagged report to file\n")
		fmt.Fprintf(os.Stderr, "    preflight --system-info                     Host metadata only\n")
		fmt.Fprintf(os.Stderr, "    preflight --fail-fast && ./deploy.sh        Gate a pipeline stage\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	os.Exit(run(cfg))
}

// run executes the validation sweep with the given configuration and
// returns an exit code.
func run(cfg *Config) int {
	if code := validateFlags(cfg); code >= 0 {
		return code
	}

	isDumb := output.IsDumbTerm()
	if cfg.NoColor || cfg.Format != "text" || isDumb {
		color.NoColor = true
	}

	log, err := logging.New(cfg.Verbose, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to set up logging: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// --validate short-circuits before anything runs.
	if cfg.Validate != "" {
		return handleValidate(cfg.Validate)
	}

	// --system-info alone short-circuits to host metadata only. Combined
	// with category flags it is a no-op, since every run collects system
	// info first anyway.
	if systemInfoOnly(cfg) {
		return emitSystemInfo(cfg.Quiet)
	}

	loader := config.New()
	runCfg, err := loader.Load(cfg.ConfigPath)
	if err != nil {
		if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		}
		return 1
	}

	r := &runner.Runner{
		Config:      runCfg,
		Log:         log,
		Version:     version,
		Environment: cfg.Environment,
	}
	showProgress := cfg.Format == "text" && !cfg.Quiet && cfg.OutputFile == ""
	if showProgress {
		r.Progress = func(done, total int, cat types.Category) {
			fmt.Fprintf(os.Stderr, "\r  Validating %s... %d/%d", cat, done, total)
		}
	}
	report := r.Run(context.Background(), selectedCategories(cfg))
	if showProgress {
		fmt.Fprintf(os.Stderr, "\r  Validating... done            \n")
	}

	// An explicitly requested report file is written even in quiet mode;
	// quiet only suppresses the stdout rendering and notices.
	if cfg.OutputFile != "" {
		if code := writeReportFile(cfg.OutputFile, report, cfg.Quiet); code >= 0 {
			return code
		}
	}

	if cfg.Quiet {
		return exitCode(report)
	}

	if err := stdoutFormatter(cfg).Write(os.Stdout, report); err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to write output: %v\n", err)
		return 1
	}

	if cfg.FailFast && report.Summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "  ✗ fail-fast: %d check(s) failed, aborting downstream pipeline stages\n",
			report.Summary.Failed)
	}
	return exitCode(report)
}

// validateFlags checks --format. Returns -1 if valid, or an exit code.
func validateFlags(cfg *Config) int {
	switch cfg.Format {
	case "text", "json", "jsonl":
	default:
		fmt.Fprintf(os.Stderr, "  ✗ Invalid --format value %q (must be text, json, or jsonl)\n", cfg.Format)
		return 1
	}
	return -1
}

// systemInfoOnly reports whether --system-info was requested without any
// category flag.
func systemInfoOnly(cfg *Config) bool {
	return cfg.SystemInfo && len(selectedCategories(cfg)) == 0
}

// selectedCategories maps category flags to the run selection. No flag set
// means the full sweep.
func selectedCategories(cfg *Config) []types.Category {
	var selected []types.Category
	if cfg.NetworkOnly {
		selected = append(selected, types.CategoryNetwork)
	}
	if cfg.DiskOnly {
		selected = append(selected, types.CategoryStorage)
	}
	if cfg.ServicesOnly {
		selected = append(selected, types.CategoryService)
	}
	if cfg.SoftwareOnly {
		selected = append(selected, types.CategorySoftware)
	}
	if cfg.WinRMOnly {
		selected = append(selected, types.CategoryRemote)
	}
	return selected
}

// stdoutFormatter picks the formatter for the stdout rendering.
func stdoutFormatter(cfg *Config) output.Formatter {
	switch cfg.Format {
	case "json":
		return &output.JSONFormatter{}
	case "jsonl":
		return &output.JSONLFormatter{}
	default:
		termWidth := 0
		if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
			if tw, _, err := term.GetSize(fd); err == nil && tw > 0 {
				termWidth = tw
			}
		}
		return &output.TextFormatter{
			Verbose: cfg.Verbose,
			Width:   termWidth,
			Dumb:    output.IsDumbTerm(),
		}
	}
}

// writeReportFile writes the JSON report to path. Returns -1 on success,
// or an exit code on failure. Quiet suppresses the notices, not the file.
func writeReportFile(path string, report *types.Report, quiet bool) int {
	if err := validateOutputPath(path); err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ✗ Unsafe output path: %v\n", err)
		}
		return 1
	}
	f, err := os.Create(path)
	if err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ✗ Failed to create output file: %v\n", err)
		}
		return 1
	}
	defer f.Close()

	if err := (&output.JSONFormatter{}).Write(f, report); err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ✗ Failed to write report: %v\n", err)
		}
		return 1
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "  ✓ Report written to %s\n", path)
	}
	return -1
}

// emitSystemInfo prints host metadata as JSON and exits cleanly.
func emitSystemInfo(quiet bool) int {
	collector := sysinfo.NewCollector(nil)
	info := collector.Collect()
	if quiet {
		return 0
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to encode system info: %v\n", err)
		return 1
	}
	return 0
}

// handleValidate validates a configuration file without running any checks.
func handleValidate(path string) int {
	if err := config.New().ValidateFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "  ✓ %s is valid\n", path)
	return 0
}

// exitCode maps the report outcome to the process exit code:
// 0 for PASS or WARN, 1 for FAIL.
func exitCode(report *types.Report) int {
	if report.Summary.OverallStatus == types.StatusFail {
		return 1
	}
	return 0
}

// unsafeOutputPrefixes are path prefixes where writing report files is
// rejected, preventing accidental overwrite of system files when running
// as root.
var unsafeOutputPrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/", "/sbin/", "/bin/", "/usr/"}

// validateOutputPath checks that the output file path is safe to write to.
func validateOutputPath(path string) error {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		for _, prefix := range unsafeOutputPrefixes {
			if strings.HasPrefix(cleaned, prefix) {
				return fmt.Errorf("refusing to write to system path %q", cleaned)
			}
		}
	}
	return nil
}
