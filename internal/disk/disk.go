// Package disk validates per-volume free space against absolute and
// percentage thresholds.
package disk

import (
	"context"
	"fmt"
	"time"

	gopsdisk "github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/types"
)

const bytesPerGB = 1024 * 1024 * 1024

// failFloorPercent is the free-space percentage at or below which a
// threshold miss escalates from WARN to FAIL.
const failFloorPercent = 5.0

// usage is the subset of volume capacity data the validator needs.
type usage struct {
	TotalGB     float64
	UsedGB      float64
	FreeGB      float64
	FreePercent float64
}

// Validator checks volume free space. Volumes come from the configured
// drive list, or from partition enumeration when the list is empty.
type Validator struct {
	req types.DiskRequirements
	log *zap.Logger

	// usageFn reads capacity for one mountpoint. Injectable for tests.
	usageFn func(ctx context.Context, path string) (usage, error)

	// partitionsFn enumerates mountpoints. Injectable for tests.
	partitionsFn func(ctx context.Context) ([]string, error)
}

// New creates a disk Validator for the given requirements.
func New(req types.DiskRequirements, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		req:          req,
		log:          log,
		usageFn:      gopsutilUsage,
		partitionsFn: gopsutilPartitions,
	}
}

// Category returns the validator's result category.
func (v *Validator) Category() types.Category { return types.CategoryStorage }

// Validate checks every configured volume, or all discoverable volumes
// when none are configured. An inaccessible volume from enumeration is
// skipped silently; an explicitly configured volume that cannot be read
// produces a FAIL carrying the access error.
func (v *Validator) Validate(ctx context.Context) []types.ValidationResult {
	drives := v.req.Drives
	explicit := len(drives) > 0
	if !explicit {
		discovered, err := v.partitionsFn(ctx)
		if err != nil {
			v.log.Debug("partition enumeration failed", zap.Error(err))
			return nil
		}
		drives = discovered
	}

	results := make([]types.ValidationResult, 0, len(drives))
	for _, drive := range drives {
		start := time.Now()
		u, err := v.usageFn(ctx, drive)
		if err != nil {
			if !explicit {
				continue
			}
			results = append(results, types.NewResult(types.CategoryStorage,
				"disk_space_"+sanitize(drive), types.StatusFail, time.Since(start),
				fmt.Sprintf("Could not read capacity of %s.", drive)).
				WithDetails(map[string]any{"drive": drive, "error": err.Error()}).
				WithRemediation(fmt.Sprintf("Verify %s is mounted and readable by the current user.", drive)))
			continue
		}
		results = append(results, v.check(drive, u, time.Since(start)))
	}
	return results
}

// check applies the tiered threshold policy to one volume.
func (v *Validator) check(drive string, u usage, elapsed time.Duration) types.ValidationResult {
	name := "disk_space_" + sanitize(drive)
	details := map[string]any{
		"drive":                drive,
		"total_gb":             u.TotalGB,
		"used_gb":              u.UsedGB,
		"free_gb":              u.FreeGB,
		"free_percent":         u.FreePercent,
		"minimum_free_gb":      v.req.MinimumFreeGB,
		"minimum_free_percent": v.req.MinimumFreePercent,
	}

	meetsGB := u.FreeGB >= v.req.MinimumFreeGB
	meetsPercent := u.FreePercent >= v.req.MinimumFreePercent

	if meetsGB && meetsPercent {
		return types.NewResult(types.CategoryStorage, name, types.StatusPass, elapsed,
			fmt.Sprintf("%s has %.1f GB free (%.1f%%).", drive, u.FreeGB, u.FreePercent)).
			WithDetails(details)
	}

	remediation := fmt.Sprintf("Free up space on %s: at least %.1f GB and %.1f%% free are required.",
		drive, v.req.MinimumFreeGB, v.req.MinimumFreePercent)

	if u.FreePercent <= failFloorPercent {
		return types.NewResult(types.CategoryStorage, name, types.StatusFail, elapsed,
			fmt.Sprintf("%s is critically low on space: %.1f GB free (%.1f%%).", drive, u.FreeGB, u.FreePercent)).
			WithDetails(details).
			WithRemediation(remediation)
	}

	return types.NewResult(types.CategoryStorage, name, types.StatusWarn, elapsed,
		fmt.Sprintf("%s is below the free-space threshold: %.1f GB free (%.1f%%).", drive, u.FreeGB, u.FreePercent)).
		WithDetails(details).
		WithRemediation(remediation)
}

// gopsutilUsage reads capacity for one mountpoint via gopsutil.
func gopsutilUsage(ctx context.Context, path string) (usage, error) {
	u, err := gopsdisk.UsageWithContext(ctx, path)
	if err != nil {
		return usage{}, err
	}
	if u.Total == 0 {
		return usage{}, fmt.Errorf("volume %s reports zero capacity", path)
	}
	return usage{
		TotalGB:     float64(u.Total) / bytesPerGB,
		UsedGB:      float64(u.Used) / bytesPerGB,
		FreeGB:      float64(u.Free) / bytesPerGB,
		FreePercent: 100 - u.UsedPercent,
	}, nil
}

// gopsutilPartitions enumerates physical partition mountpoints.
func gopsutilPartitions(ctx context.Context) ([]string, error) {
	parts, err := gopsdisk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	mounts := make([]string, 0, len(parts))
	for _, p := range parts {
		mounts = append(mounts, p.Mountpoint)
	}
	return mounts, nil
}

// sanitize turns a mountpoint into a check-name fragment.
func sanitize(drive string) string {
	if drive == "/" {
		return "root"
	}
	out := make([]rune, 0, len(drive))
	for _, r := range drive {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
