package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/game"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains process and host information. Host figures are
// omitted when the platform cannot report them.
type SystemInfo struct {
	GoVersion         string   `json:"go_version"`
	NumGoroutines     int      `json:"num_goroutines"`
	NumCPU            int      `json:"num_cpu"`
	MemoryAlloc       uint64   `json:"memory_alloc_bytes"`
	MemorySys         uint64   `json:"memory_sys_bytes"`
	GCCycles          uint32   `json:"gc_cycles"`
	HostCPUPercent    *float64 `json:"host_cpu_percent,omitempty"`
	HostMemoryPercent *float64 `json:"host_memory_percent,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealthCheck reports codec availability, history database state and
// system figures.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	checks := map[string]HealthCheck{
		"codecs":   s.checkCodecsHealth(),
		"database": s.checkDatabaseHealth(r.Context()),
	}
	overallStatus := HealthStatusHealthy
	for _, c := range checks {
		switch {
		case c.Status == HealthStatusUnhealthy:
			overallStatus = HealthStatusUnhealthy
		case c.Status == HealthStatusDegraded && overallStatus == HealthStatusHealthy:
			overallStatus = HealthStatusDegraded
		}
	}

	response := HealthCheckResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.startTime).String(),
		Checks:        checks,
		System:        getSystemInfo(),
		RequestID:     requestID,
	}

	statusCode := http.StatusOK
	if overallStatus == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	s.writeJSON(w, statusCode, response)
}

func (s *Server) checkCodecsHealth() HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	have := len(codec.ListCodecs())
	message := fmt.Sprintf("%d generation codecs available", have)
	if have != len(game.Generations) {
		status = HealthStatusUnhealthy
		message = fmt.Sprintf("%d of %d generation codecs registered", have, len(game.Generations))
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

func (s *Server) checkDatabaseHealth(ctx context.Context) HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	message := "Database connection healthy"

	if s.db == nil {
		status = HealthStatusDegraded
		message = "Run history disabled"
	} else if p, ok := s.db.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			status = HealthStatusUnhealthy
			message = fmt.Sprintf("Database ping failed: %v", err)
		}
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

func getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAlloc:   m.Alloc,
		MemorySys:     m.Sys,
		GCCycles:      m.NumGC,
	}
	// Percent(0, false) compares against the previous call without blocking.
	if c, err := cpu.Percent(0, false); err == nil && len(c) > 0 {
		info.HostCPUPercent = &c[0]
	}
	if v, err := mem.VirtualMemory(); err == nil {
		info.HostMemoryPercent = &v.UsedPercent
	}
	return info
}
