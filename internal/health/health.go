// Package health probes the configured integrations and reports an overall
// gateway status.
package health

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Probe checks one integration's reachability. It returns nil when the
// service answered.
type Probe func(ctx context.Context) error

// ServiceStatus is the outcome of one probe.
type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"` // connected, error, not_configured
	Error  string `json:"error,omitempty"`
}

// ProcessStats reports the gateway's own resource usage.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	UptimeSec  int64   `json:"uptime_sec"`
}

// Report is the full health check result.
type Report struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceStatus `json:"services"`
	Process  *ProcessStats   `json:"process,omitempty"`
	Time     time.Time       `json:"time"`
}

// Checker aggregates probes for the configured services.
type Checker struct {
	probes  map[string]Probe
	started time.Time
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{
		probes:  map[string]Probe{},
		started: time.Now(),
	}
}

// Register adds a probe for a service. A nil probe marks the service as
// not configured.
func (c *Checker) Register(name string, probe Probe) {
	c.probes[name] = probe
}

// Check runs every probe and derives the overall status: healthy when all
// configured services answer, unhealthy when none do, degraded otherwise.
// Unconfigured services do not count either way.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{Time: time.Now()}

	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	connected, failed := 0, 0
	for _, name := range names {
		probe := c.probes[name]
		status := ServiceStatus{Name: name}
		switch {
		case probe == nil:
			status.Status = "not_configured"
		default:
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := probe(probeCtx)
			cancel()
			if err != nil {
				status.Status = "error"
				status.Error = err.Error()
				failed++
			} else {
				status.Status = "connected"
				connected++
			}
		}
		report.Services = append(report.Services, status)
	}

	// With nothing configured the gateway itself is still up, so failed == 0
	// counts as healthy either way.
	switch {
	case failed == 0:
		report.Status = "healthy"
	case connected == 0:
		report.Status = "unhealthy"
	default:
		report.Status = "degraded"
	}

	report.Process = processStats(c.started)
	return report
}

// processStats collects the gateway's own memory and CPU usage. Failures
// are non-fatal; the report just omits the section.
func processStats(started time.Time) *ProcessStats {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}

	stats := &ProcessStats{
		PID:       proc.Pid,
		UptimeSec: int64(time.Since(started).Seconds()),
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
