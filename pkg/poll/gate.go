package poll

import (
	"sync"
	"time"
)

type GateState int

const (
	Idle GateState = iota
	Running
	Expired
)

func (s GateState) String() string {
	switch s {
	case Running:
		return "running"
	case Expired:
		return "expired"
	}
	return "idle"
}

// Gate is the countdown leading to the poll: Idle -> Running ->
// Expired, one way. While running it recomputes the remaining time
// from a fixed end timestamp on every tick, so a suspended process
// wakes up with the correct remainder instead of an accumulated drift.
type Gate struct {
	mu        sync.Mutex
	state     GateState
	endAt     time.Time
	callbacks []func()

	// Hiding the countdown surface does not stop the gate itself.
	visible bool

	tick       time.Duration
	stop       chan struct{}
	expireOnce sync.Once
}

func NewGate(visible bool) *Gate {
	return &Gate{
		state:   Idle,
		visible: visible,
		tick:    250 * time.Millisecond,
	}
}

// Register a callback for expiry. Every registered callback fires
// exactly once.
func (g *Gate) OnEnd(cb func()) {
	g.mu.Lock()
	if g.state == Expired {
		g.mu.Unlock()
		cb()
		return
	}
	g.callbacks = append(g.callbacks, cb)
	g.mu.Unlock()
}

func (g *Gate) Start(d time.Duration) {
	g.mu.Lock()
	if g.state != Idle {
		g.mu.Unlock()
		return
	}
	g.state = Running
	g.endAt = time.Now().Add(d)
	g.stop = make(chan struct{})
	g.mu.Unlock()

	go g.run()
}

func (g *Gate) run() {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			if g.Remaining() <= 0 {
				g.expire()
				return
			}
		}
	}
}

func (g *Gate) expire() {
	g.expireOnce.Do(func() {
		g.mu.Lock()
		g.state = Expired
		callbacks := g.callbacks
		g.callbacks = nil
		g.mu.Unlock()

		for _, cb := range callbacks {
			cb()
		}
	})
}

func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Running {
		return 0
	}
	remaining := time.Until(g.endAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Expired() bool {
	return g.State() == Expired
}

func (g *Gate) Visible() bool {
	return g.visible
}

// Stop halts the ticker without expiring; used on shutdown only.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Running {
		close(g.stop)
		g.state = Idle
	}
}
