package app

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Metrics counts what the event loop did. Counters are atomic so they can
// be read from outside the loop goroutine.
type Metrics struct {
	events   atomic.Uint64
	ignored  atomic.Uint64
	redraws  atomic.Uint64
	resizes  atomic.Uint64
	reloads  atomic.Uint64
	rejected atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Events          uint64
	Ignored         uint64
	Redraws         uint64
	Resizes         uint64
	Reloads         uint64
	RejectedReloads uint64
	Uptime          time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Events:          m.events.Load(),
		Ignored:         m.ignored.Load(),
		Redraws:         m.redraws.Load(),
		Resizes:         m.resizes.Load(),
		Reloads:         m.reloads.Load(),
		RejectedReloads: m.rejected.Load(),
		Uptime:          time.Since(m.startTime),
	}
}

// MarshalZerologObject lets a snapshot be logged with Object.
func (s MetricsSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("events", s.Events).
		Uint64("ignored", s.Ignored).
		Uint64("redraws", s.Redraws).
		Uint64("resizes", s.Resizes).
		Uint64("reloads", s.Reloads).
		Uint64("rejected_reloads", s.RejectedReloads).
		Dur("uptime", s.Uptime)
}
