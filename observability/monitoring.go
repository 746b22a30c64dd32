package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Stats aggregates the realtime metrics exposed on /stats.
type Stats struct {
	Connections     int     `json:"connections"`
	Rooms           int     `json:"rooms"`
	ActiveMatches   int     `json:"active_matches"`
	MessagesSent    uint64  `json:"messages_sent"`
	MatchesResolved uint64  `json:"matches_resolved"`
	MessageRate     float64 `json:"message_rate"` // messages/s over the last interval
	AllocMemMb      uint64  `json:"alloc_mem_mb"`
	NumGC           uint32  `json:"num_gc"`
	CPUPercent      float64 `json:"cpu_percent"`
	RAMPercent      float32 `json:"ram_percent"`
}

// Monitor gathers counters from the realtime core. Counters are atomic
// so the hot paths never contend on the stats mutex; gauges are pulled
// from their owners at refresh time.
type Monitor struct {
	log    *slog.Logger
	mu     sync.RWMutex
	latest Stats

	messagesSent    uint64
	matchesResolved uint64
	windowMessages  uint64
	lastCheck       time.Time

	connections   func() int
	rooms         func() int
	activeMatches func() int
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log, lastCheck: time.Now()}
}

// SetGauges wires the pull-based gauges. Must be called once at startup
// before Refresh runs.
func (m *Monitor) SetGauges(connections, rooms, activeMatches func() int) {
	m.connections = connections
	m.rooms = rooms
	m.activeMatches = activeMatches
}

func (m *Monitor) IncrMessages() {
	atomic.AddUint64(&m.messagesSent, 1)
	atomic.AddUint64(&m.windowMessages, 1)
}

func (m *Monitor) IncrMatchesResolved() {
	atomic.AddUint64(&m.matchesResolved, 1)
}

// SetProcessUsage records CPU/RAM readings taken by the stats worker.
func (m *Monitor) SetProcessUsage(cpu float64, ram float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest.CPUPercent = cpu
	m.latest.RAMPercent = ram
}

// Refresh recomputes the derived metrics. Called periodically by the
// stats worker, never from a hot path.
func (m *Monitor) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	duration := now.Sub(m.lastCheck).Seconds()
	if duration > 0 {
		window := atomic.SwapUint64(&m.windowMessages, 0)
		m.latest.MessageRate = float64(window) / duration
	}
	m.lastCheck = now

	m.latest.MessagesSent = atomic.LoadUint64(&m.messagesSent)
	m.latest.MatchesResolved = atomic.LoadUint64(&m.matchesResolved)

	if m.connections != nil {
		m.latest.Connections = m.connections()
	}
	if m.rooms != nil {
		m.latest.Rooms = m.rooms()
	}
	if m.activeMatches != nil {
		m.latest.ActiveMatches = m.activeMatches()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.latest.AllocMemMb = mem.Alloc / 1024 / 1024
	m.latest.NumGC = mem.NumGC

	m.log.Debug("stats refreshed",
		"connections", m.latest.Connections,
		"rooms", m.latest.Rooms,
		"matches", m.latest.ActiveMatches,
		"msg_rate", m.latest.MessageRate,
	)
}

func (m *Monitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
