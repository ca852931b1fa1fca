package types

import "time"

// Status represents the outcome of a single validation check.
type Status string

const (
	// StatusPass means the check's expected condition was met.
	StatusPass Status = "PASS"
	// StatusWarn means the check produced an ambiguous or degraded outcome.
	StatusWarn Status = "WARN"
	// StatusFail means the check's expected condition was not met.
	StatusFail Status = "FAIL"
	// StatusSkip means the check was not applicable and was skipped.
	StatusSkip Status = "SKIP"
)

// Category identifies which validator produced a result.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategoryStorage  Category = "storage"
	CategoryService  Category = "service"
	CategorySoftware Category = "software"
	CategoryRemote   Category = "remote"
)

// CategoryOrder is the fixed order in which categories run and are reported.
var CategoryOrder = []Category{
	CategoryNetwork,
	CategoryStorage,
	CategoryService,
	CategorySoftware,
	CategoryRemote,
}

// ReportGroup maps a category to the key it is grouped under in the
// validation_results section of the JSON report.
var ReportGroup = map[Category]string{
	CategoryNetwork:  "network",
	CategoryStorage:  "disk",
	CategoryService:  "services",
	CategorySoftware: "software",
	CategoryRemote:   "winrm",
}

// ValidationResult holds the outcome of running a single check.
// A result is never mutated after construction; the runner only appends
// results to its collection.
type ValidationResult struct {
	// CheckName is the stable check identifier, unique within a run
	// (category plus target, e.g. "tcp_connection_local_backend").
	CheckName string `json:"check_name"`

	// Category is the check's validator category.
	Category Category `json:"category"`

	// Status is the check outcome.
	Status Status `json:"status"`

	// DurationMS is wall-clock time spent on the check, in milliseconds.
	// Always >= 0, measured even on failure or timeout.
	DurationMS int64 `json:"duration_ms"`

	// Message is a single human-readable sentence summarizing the outcome.
	Message string `json:"message"`

	// Details is an open map of check-specific diagnostic data
	// (endpoint, status code, device, version strings). Never used for
	// control flow.
	Details map[string]any `json:"details,omitempty"`

	// Remediation is an actionable hint, present only when Status != PASS.
	Remediation string `json:"remediation,omitempty"`

	// Timestamp is the result creation time in ISO-8601, set once at
	// construction.
	Timestamp string `json:"timestamp"`
}

// NewResult constructs a ValidationResult with its timestamp set to now and
// the duration clamped to zero or above.
func NewResult(category Category, checkName string, status Status, elapsed time.Duration, message string) ValidationResult {
	if elapsed < 0 {
		elapsed = 0
	}
	return ValidationResult{
		CheckName:  checkName,
		Category:   category,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
		Message:    message,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// WithDetails returns a copy of the result carrying the given details map.
func (r ValidationResult) WithDetails(details map[string]any) ValidationResult {
	r.Details = details
	return r
}

// WithRemediation returns a copy of the result carrying a remediation hint.
func (r ValidationResult) WithRemediation(hint string) ValidationResult {
	r.Remediation = hint
	return r
}
