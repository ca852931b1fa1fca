package types

// SystemInfo describes the host a validation run executed on.
// It is collected once per run, read-only afterward, and used purely for
// report context; it never drives check pass/fail decisions.
type SystemInfo struct {
	// Hostname is the system hostname.
	Hostname string `json:"hostname"`

	// OS is the operating system name (e.g. "linux", "darwin").
	OS string `json:"os"`

	// OSVersion is the kernel or platform version string.
	OSVersion string `json:"os_version,omitempty"`

	// Platform is the distribution or product name, when known.
	Platform string `json:"platform,omitempty"`

	// Arch is the CPU architecture (e.g. "amd64", "arm64").
	Arch string `json:"arch"`

	// CPUCount is the number of logical CPUs.
	CPUCount int `json:"cpu_count"`

	// TotalMemoryGB is total physical memory in gigabytes.
	TotalMemoryGB float64 `json:"total_memory_gb"`

	// AvailableMemoryGB is currently available memory in gigabytes.
	AvailableMemoryGB float64 `json:"available_memory_gb"`

	// Volumes maps mountpoint (or device) to its usage snapshot.
	Volumes map[string]VolumeUsage `json:"volumes,omitempty"`

	// Interfaces maps interface name to its address list.
	Interfaces map[string][]string `json:"network_interfaces,omitempty"`

	// RuntimeVersion is the Go runtime the validator was built with.
	RuntimeVersion string `json:"runtime_version"`

	// User is the account the validator ran as.
	User string `json:"user,omitempty"`
}

// VolumeUsage is a point-in-time capacity snapshot for one volume.
type VolumeUsage struct {
	// Device is the underlying device path, when known.
	Device string `json:"device,omitempty"`

	// Filesystem is the filesystem type.
	Filesystem string `json:"filesystem,omitempty"`

	// TotalGB is the volume capacity in gigabytes.
	TotalGB float64 `json:"total_gb"`

	// UsedGB is the used capacity in gigabytes.
	UsedGB float64 `json:"used_gb"`

	// FreeGB is the free capacity in gigabytes.
	FreeGB float64 `json:"free_gb"`

	// FreePercent is free capacity as a percentage of total.
	FreePercent float64 `json:"free_percent"`
}
