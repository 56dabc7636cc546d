// Package sysinfo reports host health for the admin status endpoint.
// It uses gopsutil for cross-platform system telemetry.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot holds one collection cycle's data.
type Snapshot struct {
	Hostname    string    `json:"hostname"`
	OS          string    `json:"os"`
	GoVersion   string    `json:"go_version"`
	Uptime      uint64    `json:"uptime_seconds"`
	CPUUsage    float64   `json:"cpu_usage"`  // percent 0-100
	MemUsage    float64   `json:"mem_usage"`  // percent 0-100
	DiskUsage   float64   `json:"disk_usage"` // percent 0-100 of the partition holding the database
	Goroutines  int       `json:"goroutines"`
	CollectedAt time.Time `json:"collected_at"`
}

// Collect gathers the current host snapshot. dbPath selects the partition whose
// usage is reported; failures of individual probes leave their field zero.
func Collect(ctx context.Context, dbPath string) *Snapshot {
	snap := &Snapshot{
		OS:          detailedOS(ctx),
		GoVersion:   runtime.Version(),
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: time.Now(),
	}

	if h, err := os.Hostname(); err == nil {
		snap.Hostname = h
	}

	if up, err := host.UptimeWithContext(ctx); err == nil {
		snap.Uptime = up
	}

	// interval 0 compares against the previous call; cheap enough per request
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		snap.CPUUsage = pcts[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemUsage = vm.UsedPercent
	}

	snap.DiskUsage = diskUsage(ctx, dbPath)
	return snap
}

// detailedOS returns a descriptive OS version string, or runtime.GOOS as fallback.
func detailedOS(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err == nil && info.Platform != "" {
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion) // e.g., "debian 12.5"
		}
		return info.Platform
	}
	return runtime.GOOS
}

// diskUsage returns the used percentage of the filesystem holding path,
// falling back to the working directory.
func diskUsage(ctx context.Context, path string) float64 {
	for _, p := range []string{path, "."} {
		if p == "" {
			continue
		}
		if usage, err := disk.UsageWithContext(ctx, p); err == nil {
			return usage.UsedPercent
		}
	}
	return 0
}
