package scheduler

import (
	"context"
	"sync"
	"time"
)

// gate suspends the loop while paused; Resume wakes waiters immediately.
type gate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

func newGate() *gate {
	return &gate{}
}

// Pause closes the gate, returns false when it was already closed
func (g *gate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		return false
	}
	g.paused = true
	g.resume = make(chan struct{})
	return true
}

// Resume opens the gate, returns false when it was not closed
func (g *gate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		return false
	}
	g.paused = false
	close(g.resume)
	return true
}

// Paused reports whether the gate is closed
func (g *gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is closed or until ctx is done
func (g *gate) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return nil
		}
		resume := g.resume
		g.mu.Unlock()
		select {
		case <-resume:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pacer spreads a slice over wall time in ticks, honouring the gate
// between ticks.
type pacer struct {
	tick int
	unit time.Duration
	gate *gate
}

// Run paces units and calls onTick with the elapsed units after each tick.
// A zero-length slice returns immediately without ticking.
func (p *pacer) Run(ctx context.Context, units int, onTick func(elapsed int)) error {
	tick := p.tick
	if tick < 1 {
		tick = 1
	}
	for elapsed := 0; elapsed < units; {
		if err := p.gate.Wait(ctx); err != nil {
			return err
		}
		step := min(tick, units-elapsed)
		if err := sleep(ctx, time.Duration(step)*p.unit); err != nil {
			return err
		}
		elapsed += step
		if onTick != nil {
			onTick(elapsed)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
