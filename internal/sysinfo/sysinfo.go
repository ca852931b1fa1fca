// Package sysinfo collects host metadata for report context.
package sysinfo

import (
	"math"
	"os"
	"os/user"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/types"
)

const bytesPerGB = 1024 * 1024 * 1024

// Collector gathers host metadata once per run. Every sub-collection is
// best-effort: a failed probe leaves its field zero and is logged at debug
// level; it never fails the run, since system info is report context only.
type Collector struct {
	log *zap.Logger
}

// NewCollector creates a Collector. A nil logger disables debug logging.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Collect gathers the host snapshot.
func (c *Collector) Collect() types.SystemInfo {
	info := types.SystemInfo{
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		RuntimeVersion: runtime.Version(),
	}

	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}

	if hi, err := host.Info(); err == nil {
		info.OSVersion = hi.KernelVersion
		info.Platform = hi.Platform
		if hi.PlatformVersion != "" {
			info.Platform = hi.Platform + " " + hi.PlatformVersion
		}
	} else {
		c.log.Debug("host info unavailable", zap.Error(err))
	}

	if n, err := cpu.Counts(true); err == nil {
		info.CPUCount = n
	} else {
		info.CPUCount = runtime.NumCPU()
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemoryGB = round2(float64(vm.Total) / bytesPerGB)
		info.AvailableMemoryGB = round2(float64(vm.Available) / bytesPerGB)
	} else {
		c.log.Debug("memory info unavailable", zap.Error(err))
	}

	info.Volumes = c.collectVolumes()
	info.Interfaces = c.collectInterfaces()

	if u, err := user.Current(); err == nil {
		info.User = u.Username
	}

	return info
}

// collectVolumes snapshots usage for every readable physical partition.
// Partitions that cannot be statted are skipped.
func (c *Collector) collectVolumes() map[string]types.VolumeUsage {
	parts, err := disk.Partitions(false)
	if err != nil {
		c.log.Debug("partition enumeration failed", zap.Error(err))
		return nil
	}

	volumes := make(map[string]types.VolumeUsage, len(parts))
	for _, p := range parts {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		volumes[p.Mountpoint] = types.VolumeUsage{
			Device:      p.Device,
			Filesystem:  p.Fstype,
			TotalGB:     round2(float64(usage.Total) / bytesPerGB),
			UsedGB:      round2(float64(usage.Used) / bytesPerGB),
			FreeGB:      round2(float64(usage.Free) / bytesPerGB),
			FreePercent: round2(100 - usage.UsedPercent),
		}
	}
	if len(volumes) == 0 {
		return nil
	}
	return volumes
}

// collectInterfaces maps interface names to their address lists.
func (c *Collector) collectInterfaces() map[string][]string {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		c.log.Debug("interface enumeration failed", zap.Error(err))
		return nil
	}

	result := make(map[string][]string, len(ifaces))
	for _, iface := range ifaces {
		if len(iface.Addrs) == 0 {
			continue
		}
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		result[iface.Name] = addrs
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
