// Package health implements the periodic health supervisor: per-tick
// sub-checks of the transport, publish sink, and host resources, rolled
// up into an overall status with edge-triggered alerting.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/nattery/edge-bridge/internal/accessor"
	"github.com/nattery/edge-bridge/internal/publish"
)

// Status is the health grade a sub-check or the overall snapshot can hold.
type Status string

const (
	Healthy   Status = "healthy"
	Unhealthy Status = "unhealthy"
	Critical  Status = "critical"
	Error     Status = "error"
	Unknown   Status = "unknown"
)

// ComponentHealth is one sub-check's result.
type ComponentHealth struct {
	Status  Status
	Issue   string
	Details map[string]any
}

// Snapshot is a complete health-check tick.
type Snapshot struct {
	Timestamp           time.Time
	Overall             Status
	Transport           ComponentHealth
	Publish             ComponentHealth
	System              ComponentHealth
	ConsecutiveFailures int
}

// Config carries the supervisor's intervals and thresholds.
type Config struct {
	CheckInterval          time.Duration
	MaxConsecutiveFailures uint32
	TransportSlowThreshold time.Duration
}

// maxHistory bounds the retained snapshot ring.
const maxHistory = 100

// Supervisor runs the periodic health check and edge-triggered alerting.
type Supervisor struct {
	cfg      Config
	accessor *accessor.Accessor
	sink     publish.Sink

	mu                  sync.Mutex
	consecutiveFailures int
	activeAlerts        map[string]struct{}
	history             []Snapshot
	totalChecks         uint64
	startedAt           time.Time
}

// New builds a Supervisor.
func New(cfg Config, a *accessor.Accessor, sink publish.Sink) *Supervisor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 60 * time.Second
	}
	if cfg.TransportSlowThreshold <= 0 {
		cfg.TransportSlowThreshold = 5 * time.Second
	}
	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = 5
	}
	return &Supervisor{
		cfg:          cfg,
		accessor:     a,
		sink:         sink,
		activeAlerts: make(map[string]struct{}),
		startedAt:    time.Now().UTC(),
	}
}

// Run drives the supervisor's ticker loop until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	snap := s.Check(ctx)
	s.processAlerts(ctx, snap)
}

// Check performs one health check and returns the resulting snapshot,
// updating the consecutive-failures counter as a side effect.
func (s *Supervisor) Check(ctx context.Context) Snapshot {
	snap := Snapshot{
		Timestamp: time.Now().UTC(),
		Transport: s.checkTransport(ctx),
		Publish:   s.checkPublish(),
		System:    s.checkSystem(),
	}

	switch {
	case snap.Transport.Status == Critical || snap.Publish.Status == Critical || snap.System.Status == Critical:
		snap.Overall = Critical
	case snap.Transport.Status == Unhealthy || snap.Publish.Status == Unhealthy || snap.System.Status == Unhealthy:
		snap.Overall = Unhealthy
	default:
		snap.Overall = Healthy
	}

	s.mu.Lock()
	if snap.Overall != Healthy {
		s.consecutiveFailures++
	} else {
		s.consecutiveFailures = 0
	}
	snap.ConsecutiveFailures = s.consecutiveFailures

	s.totalChecks++
	s.history = append(s.history, snap)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.mu.Unlock()

	return snap
}

// History returns a copy of the retained snapshot ring, oldest first.
func (s *Supervisor) History() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.history))
	copy(out, s.history)
	return out
}

// Stats aggregates the supervisor's running counters.
type Stats struct {
	Uptime              time.Duration
	TotalChecks         uint64
	ConsecutiveFailures int
	ActiveAlerts        int
}

// Stats returns the running check/failure counters.
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Uptime:              time.Since(s.startedAt),
		TotalChecks:         s.totalChecks,
		ConsecutiveFailures: s.consecutiveFailures,
		ActiveAlerts:        len(s.activeAlerts),
	}
}

func (s *Supervisor) checkTransport(ctx context.Context) ComponentHealth {
	t := s.accessor.Transport()
	if !t.IsConnected() {
		return ComponentHealth{Status: Critical, Issue: "disconnected", Details: map[string]any{"connected": false}}
	}

	failures := t.ConsecutiveFailures()

	start := time.Now()
	value, err := s.accessor.ReadByName(ctx, "battery_voltage")
	elapsed := time.Since(start)

	details := map[string]any{"connected": true, "consecutive_failures": failures, "response_time_s": elapsed.Seconds()}

	if failures >= s.cfg.MaxConsecutiveFailures {
		return ComponentHealth{Status: Critical, Issue: "too_many_failures", Details: details}
	}
	if err != nil {
		return ComponentHealth{Status: Unhealthy, Issue: "read_failed", Details: details}
	}
	details["last_successful_read"] = value
	if elapsed > s.cfg.TransportSlowThreshold {
		return ComponentHealth{Status: Unhealthy, Issue: "slow_response", Details: details}
	}
	return ComponentHealth{Status: Healthy, Details: details}
}

func (s *Supervisor) checkPublish() ComponentHealth {
	if !s.sink.Connected() {
		return ComponentHealth{Status: Critical, Issue: "disconnected", Details: map[string]any{"connected": false}}
	}
	return ComponentHealth{Status: Healthy, Details: map[string]any{"connected": true}}
}

func (s *Supervisor) checkSystem() ComponentHealth {
	details := map[string]any{}

	vm, memErr := mem.VirtualMemory()
	du, diskErr := disk.Usage("/")
	if memErr != nil || diskErr != nil {
		return ComponentHealth{Status: Unknown, Issue: "monitoring_unavailable", Details: details}
	}

	details["memory_percent"] = vm.UsedPercent
	details["disk_percent"] = du.UsedPercent

	status := Healthy
	issue := ""

	switch {
	case vm.UsedPercent > 90:
		status, issue = Critical, "high_memory_usage"
	case vm.UsedPercent > 80:
		status, issue = Unhealthy, "elevated_memory_usage"
	}

	switch {
	case du.UsedPercent > 95:
		status, issue = Critical, "disk_full"
	case du.UsedPercent > 85 && status != Critical:
		status, issue = Unhealthy, "disk_space_low"
	}

	return ComponentHealth{Status: status, Issue: issue, Details: details}
}

// processAlerts implements the edge-triggered alert set: an alert fires
// once when its trigger condition becomes true, and is cleared (so it
// can fire again later) only when the condition stops holding.
func (s *Supervisor) processAlerts(ctx context.Context, snap Snapshot) {
	s.edge(ctx, "system_critical", snap.Overall != Critical,
		"system_health", "System health is critical - immediate attention required", "critical")

	s.edge(ctx, "modbus_disconnected", componentConnected(snap.Transport),
		"modbus_connection", "Modbus connection lost - hardware communication unavailable", "critical")

	s.edge(ctx, "mqtt_disconnected", componentConnected(snap.Publish),
		"mqtt_connection", "MQTT connection lost - communication with services unavailable", "critical")

	s.edge(ctx, "consecutive_failures", snap.ConsecutiveFailures < 3,
		"performance", "Multiple consecutive health check failures", "warning")
}

// componentConnected reads the "connected" detail a sub-check recorded.
// The connection alerts key off this boolean rather than the rolled-up
// status, so a too_many_failures Critical does not also flip the
// disconnect alert.
func componentConnected(c ComponentHealth) bool {
	connected, _ := c.Details["connected"].(bool)
	return connected
}

// edge raises or clears a single alert key. clear=true means the trigger
// condition does NOT hold (the boolean is phrased as "clear", not
// "raise", for the connection checks above where the natural condition
// reads inverted).
func (s *Supervisor) edge(ctx context.Context, key string, clear bool, alertType, message, severity string) {
	s.mu.Lock()
	if clear {
		delete(s.activeAlerts, key)
		s.mu.Unlock()
		return
	}
	if _, already := s.activeAlerts[key]; already {
		s.mu.Unlock()
		return
	}
	s.activeAlerts[key] = struct{}{}
	s.mu.Unlock()

	if err := s.sink.PublishAlert(ctx, alertType, message, severity); err != nil {
		slog.Error("health: alert publish failed", "alert", key, "err", err)
	}
}
