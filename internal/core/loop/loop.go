// Package loop schedules world ticks: one Advance followed by one render step
// per tick, never two advances for the same timestamp.
package loop

import (
	"context"
	"sync"
	"time"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/world"
)

const DefaultTickRate = 60

// Frame is what the render step receives after each advance.
type Frame struct {
	Now      float64                `json:"now"`
	Snapshot world.Snapshot         `json:"snapshot"`
	Events   []world.ProximityEvent `json:"events,omitempty"`
}

// RenderFunc hands a frame to the display side. It runs while the loop's lock
// is held, so it must not call back into the Loop.
type RenderFunc func(Frame)

// Metrics counts scheduling outcomes.
type Metrics struct {
	Ticks   uint64
	Skipped uint64
	Events  uint64
}

type Loop struct {
	mu       sync.Mutex
	world    *world.World
	clock    Clock
	render   RenderFunc
	interval time.Duration

	lastNow  float64
	advanced bool
	metrics  Metrics
}

type Option func(*Loop)

func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

func WithRender(r RenderFunc) Option {
	return func(l *Loop) { l.render = r }
}

// WithTickRate sets ticks per second. Non-positive rates are ignored.
func WithTickRate(hz int) Option {
	return func(l *Loop) {
		if hz > 0 {
			l.interval = time.Second / time.Duration(hz)
		}
	}
}

func New(w *world.World, opts ...Option) *Loop {
	l := &Loop{
		world:    w,
		clock:    NewSystemClock(),
		render:   func(Frame) {},
		interval: time.Second / DefaultTickRate,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Step runs one tick if the clock has moved past the previous one. It reports
// whether the world was advanced.
func (l *Loop) Step() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if l.advanced && now <= l.lastNow {
		l.metrics.Skipped++
		return false
	}

	before := l.world.Tick()
	events := l.world.Advance(now)
	if l.world.Tick() == before {
		// Advance ignored a non-finite timestamp.
		l.metrics.Skipped++
		return false
	}

	l.lastNow = now
	l.advanced = true
	l.metrics.Ticks++
	l.metrics.Events += uint64(len(events))

	l.render(Frame{Now: now, Snapshot: l.world.Snapshot(), Events: events})
	return true
}

// Run steps on every ticker beat until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}

// Pointer stores a pointer sample for the next tick. Last write wins.
func (l *Loop) Pointer(sample world.PointerSample) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.SetPointer(sample)
}

// Snapshot reads the world between ticks.
func (l *Loop) Snapshot() world.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.Snapshot()
}

func (l *Loop) Interval() time.Duration { return l.interval }

func (l *Loop) Metrics() Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.metrics
}
