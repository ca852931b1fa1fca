// Package types defines shared type definitions used across all preflight packages.
package types

import "time"

// Config is the run configuration deserialized from a JSON or YAML file.
// All value objects inside it are immutable inputs after load.
type Config struct {
	// NetworkEndpoints lists endpoints the network validator probes.
	NetworkEndpoints []Endpoint `json:"network_endpoints,omitempty" yaml:"network_endpoints" validate:"omitempty,dive"`

	// Services lists OS services whose state must match an expectation.
	Services []ServiceDependency `json:"services,omitempty" yaml:"services" validate:"omitempty,dive"`

	// SoftwareDependencies lists executables that must be installed.
	SoftwareDependencies []SoftwareDependency `json:"software_dependencies,omitempty" yaml:"software_dependencies" validate:"omitempty,dive"`

	// DiskRequirements carries free-space thresholds and the volume list.
	DiskRequirements DiskRequirements `json:"disk_requirements,omitempty" yaml:"disk_requirements"`

	// RemoteTests lists remote hosts to verify command execution against.
	RemoteTests []RemoteTarget `json:"winrm_tests,omitempty" yaml:"winrm_tests" validate:"omitempty,dive"`

	// PerformanceThresholds is advisory data carried into the report
	// untouched. Informational only.
	PerformanceThresholds map[string]any `json:"performance_thresholds,omitempty" yaml:"performance_thresholds"`
}

// credentialMask replaces credential values in report output.
const credentialMask = "********"

// Redacted returns a copy of the configuration with remote-session
// credentials masked. Reports embed the resolved configuration, so the
// expanded credentials must never reach serialized output.
func (c *Config) Redacted() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if len(c.RemoteTests) > 0 {
		out.RemoteTests = make([]RemoteTarget, len(c.RemoteTests))
		copy(out.RemoteTests, c.RemoteTests)
		for i := range out.RemoteTests {
			if out.RemoteTests[i].Username != "" {
				out.RemoteTests[i].Username = credentialMask
			}
			if out.RemoteTests[i].Password != "" {
				out.RemoteTests[i].Password = credentialMask
			}
		}
	}
	return &out
}

// Endpoint describes one network target to probe.
type Endpoint struct {
	// Name is a stable identifier used in check names.
	Name string `json:"name" yaml:"name" validate:"required,preflight_name"`

	// Host is the hostname or IP address to probe.
	Host string `json:"host" yaml:"host" validate:"required"`

	// Port is the TCP port to connect to.
	Port int `json:"port" yaml:"port" validate:"required,min=1,max=65535"`

	// Protocol selects the probe set: tcp, http, or https.
	// http/https endpoints additionally get an HTTP reachability probe.
	Protocol string `json:"protocol,omitempty" yaml:"protocol" validate:"omitempty,oneof=tcp http https"`

	// TimeoutSeconds bounds each probe against this endpoint.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds" validate:"omitempty,min=1,max=300"`
}

// Timeout returns the endpoint timeout as a duration, defaulting to 10s.
func (e Endpoint) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// ServiceDependency describes one OS service expectation.
type ServiceDependency struct {
	// Name is a stable identifier used in check names.
	Name string `json:"name" yaml:"name" validate:"required,preflight_name"`

	// ServiceName is the identifier the service manager knows the
	// service by (unit name on systemd).
	ServiceName string `json:"service_name" yaml:"service_name" validate:"required"`

	// DisplayName is an optional human-readable name for reports.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name"`

	// RequiredStatus is the expected live state, compared
	// case-insensitively (e.g. "running", "stopped").
	RequiredStatus string `json:"required_status" yaml:"required_status" validate:"required,oneof=running stopped"`
}

// SoftwareDependency describes one executable that must be on the search path.
type SoftwareDependency struct {
	// Name is a stable identifier used in check names.
	Name string `json:"name" yaml:"name" validate:"required,preflight_name"`

	// Executable is the binary name resolved against PATH.
	Executable string `json:"executable" yaml:"executable" validate:"required"`

	// VersionArg is the argument that makes the executable print its
	// version (e.g. "--version").
	VersionArg string `json:"version_arg,omitempty" yaml:"version_arg"`

	// VersionPattern is an optional regular expression whose first
	// capture group (or whole match) is the version token.
	VersionPattern string `json:"version_pattern,omitempty" yaml:"version_pattern"`

	// MinimumVersion is the lowest acceptable version. A version below
	// it is a soft failure (WARN), not a blocker.
	MinimumVersion string `json:"minimum_version,omitempty" yaml:"minimum_version"`

	// InstallationURL is included in the remediation hint when the
	// executable is missing.
	InstallationURL string `json:"installation_url,omitempty" yaml:"installation_url"`
}

// DiskRequirements carries free-space thresholds for the disk validator.
type DiskRequirements struct {
	// MinimumFreeGB is the absolute free-space floor per volume.
	MinimumFreeGB float64 `json:"minimum_free_gb,omitempty" yaml:"minimum_free_gb" validate:"omitempty,min=0"`

	// MinimumFreePercent is the relative free-space floor per volume.
	MinimumFreePercent float64 `json:"minimum_free_percent,omitempty" yaml:"minimum_free_percent" validate:"omitempty,min=0,max=100"`

	// Drives lists the mountpoints to check. Empty means all
	// discoverable volumes.
	Drives []string `json:"drives,omitempty" yaml:"drives"`
}

// RemoteTarget describes one host to verify remote command execution against.
type RemoteTarget struct {
	// Host is the remote hostname or IP address.
	Host string `json:"host" yaml:"host" validate:"required"`

	// Port is the remote management port. Zero means the channel default.
	Port int `json:"port,omitempty" yaml:"port" validate:"omitempty,min=1,max=65535"`

	// Username authenticates the session. Supports ${VAR} expansion.
	Username string `json:"username" yaml:"username" validate:"required"`

	// Password authenticates the session. Supports ${VAR} expansion.
	// Never echoed into results or logs.
	Password string `json:"password" yaml:"password" validate:"required"`

	// TimeoutSeconds bounds connection setup and command execution.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds" validate:"omitempty,min=1,max=300"`
}

// Timeout returns the target timeout as a duration, defaulting to 10s.
func (t RemoteTarget) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}
