package types

import (
	"math"
	"time"
)

// Report is the top-level structure for a complete validation run.
// It is serialized directly to JSON for the report output.
type Report struct {
	// Summary provides aggregate statistics for the run.
	Summary Summary `json:"summary"`

	// ExecutionInfo describes when and where the run happened.
	ExecutionInfo ExecutionInfo `json:"execution_info"`

	// SystemInfo describes the host the run was executed on.
	SystemInfo SystemInfo `json:"system_info"`

	// ValidationResults groups results by report group name
	// (network, disk, services, software, winrm), each an ordered list.
	ValidationResults map[string][]ValidationResult `json:"validation_results"`

	// Configuration is the resolved configuration the run used, with
	// remote-session credentials masked.
	Configuration *Config `json:"configuration,omitempty"`
}

// Summary provides aggregate statistics for a validation run.
type Summary struct {
	// TotalChecks is the number of results produced, skips included.
	TotalChecks int `json:"total_checks"`

	// Passed is the number of checks with status PASS.
	Passed int `json:"passed"`

	// Failed is the number of checks with status FAIL.
	Failed int `json:"failed"`

	// Warnings is the number of checks with status WARN.
	Warnings int `json:"warnings"`

	// Skipped is the number of checks with status SKIP.
	Skipped int `json:"skipped"`

	// SuccessRatePercent is passed / total_checks * 100, rounded to
	// two decimals. Zero when no checks ran.
	SuccessRatePercent float64 `json:"success_rate_percent"`

	// OverallStatus is FAIL if any check failed, else WARN if any
	// warned, else PASS.
	OverallStatus Status `json:"overall_status"`
}

// ExecutionInfo describes the run itself.
type ExecutionInfo struct {
	// StartedAt is when the run started, ISO-8601.
	StartedAt string `json:"started_at"`

	// FinishedAt is when the run finished, ISO-8601.
	FinishedAt string `json:"finished_at"`

	// DurationMS is the total run duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Environment is the target environment tag (--environment flag).
	Environment string `json:"environment,omitempty"`

	// ToolVersion is the preflight version that produced the report.
	ToolVersion string `json:"tool_version"`
}

// Summarize computes a Summary from a flat list of results.
// SKIP results count toward the denominator but are excluded from the
// overall-status ordering.
func Summarize(results []ValidationResult) Summary {
	s := Summary{TotalChecks: len(results), OverallStatus: StatusPass}
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusWarn:
			s.Warnings++
		case StatusFail:
			s.Failed++
		case StatusSkip:
			s.Skipped++
		}
	}
	if s.Failed > 0 {
		s.OverallStatus = StatusFail
	} else if s.Warnings > 0 {
		s.OverallStatus = StatusWarn
	}
	if s.TotalChecks > 0 {
		rate := float64(s.Passed) / float64(s.TotalChecks) * 100
		s.SuccessRatePercent = math.Round(rate*100) / 100
	}
	return s
}

// NewExecutionInfo builds execution metadata from run timestamps.
func NewExecutionInfo(start, end time.Time, environment, toolVersion string) ExecutionInfo {
	return ExecutionInfo{
		StartedAt:   start.Format(time.RFC3339),
		FinishedAt:  end.Format(time.RFC3339),
		DurationMS:  end.Sub(start).Milliseconds(),
		Environment: environment,
		ToolVersion: toolVersion,
	}
}
