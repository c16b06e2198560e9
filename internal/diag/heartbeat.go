package diag

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// HeartbeatConfig configures the liveness heartbeat.
type HeartbeatConfig struct {
	// Interval between beats (default: 3 seconds).
	Interval time.Duration

	// Cycles is how many beats to emit before the task exits on its own
	// (default: 10). The heartbeat exists to diagnose a stalled listener
	// shortly after start; it is not meant to run forever.
	Cycles int

	// EventCount reports the engine's event counter.
	EventCount func() uint64

	// Running reports the engine's running flag.
	Running func() bool
}

// DefaultHeartbeatConfig returns the default heartbeat settings.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Interval: 3 * time.Second,
		Cycles:   10,
	}
}

// Heartbeat periodically logs event throughput and the running flag for a
// bounded number of cycles.
type Heartbeat struct {
	cfg  HeartbeatConfig
	sink *Sink

	running atomic.Bool
	beats   atomic.Uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewHeartbeat creates a heartbeat. Zero config fields take defaults.
func NewHeartbeat(cfg HeartbeatConfig, sink *Sink) *Heartbeat {
	def := DefaultHeartbeatConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Cycles <= 0 {
		cfg.Cycles = def.Cycles
	}
	return &Heartbeat{cfg: cfg, sink: sink}
}

// Start begins the heartbeat task. Starting an already-running heartbeat is
// a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		return
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.wg.Add(1)
	go h.run(ctx)
}

// Stop cancels the heartbeat and waits for the task to exit.
func (h *Heartbeat) Stop() {
	if !h.running.CompareAndSwap(true, false) {
		return
	}
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
}

// Beats returns how many heartbeat lines have been emitted.
func (h *Heartbeat) Beats() uint64 {
	return h.beats.Load()
}

func (h *Heartbeat) run(ctx context.Context) {
	defer h.wg.Done()
	defer h.running.Store(false)

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for i := 0; i < h.cfg.Cycles; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var events uint64
			if h.cfg.EventCount != nil {
				events = h.cfg.EventCount()
			}
			running := false
			if h.cfg.Running != nil {
				running = h.cfg.Running()
			}
			h.sink.Logf("engine: heartbeat events=%d running=%v", events, running)
			h.beats.Add(1)
		}
	}
}
