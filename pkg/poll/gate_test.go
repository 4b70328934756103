package poll

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGate() *Gate {
	g := NewGate(true)
	g.tick = 5 * time.Millisecond
	return g
}

func waitExpired(t *testing.T, g *Gate) {
	t.Helper()
	deadline := time.After(time.Second)
	for !g.Expired() {
		select {
		case <-deadline:
			t.Fatal("gate never expired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGateLifecycle(t *testing.T) {
	g := newTestGate()
	assert.Equal(t, Idle, g.State())
	assert.Equal(t, time.Duration(0), g.Remaining())

	g.Start(50 * time.Millisecond)
	assert.Equal(t, Running, g.State())
	assert.Greater(t, g.Remaining(), time.Duration(0))

	waitExpired(t, g)
	assert.Equal(t, Expired, g.State())
	assert.Equal(t, time.Duration(0), g.Remaining())
}

func TestGateCallbacksFireOnce(t *testing.T) {
	g := newTestGate()

	var first, second int32
	g.OnEnd(func() { atomic.AddInt32(&first, 1) })
	g.OnEnd(func() { atomic.AddInt32(&second, 1) })

	g.Start(20 * time.Millisecond)
	waitExpired(t, g)

	// Give the expiry goroutine time to run the callbacks.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestGateOnEndAfterExpiry(t *testing.T) {
	g := newTestGate()
	g.Start(10 * time.Millisecond)
	waitExpired(t, g)

	fired := false
	g.OnEnd(func() { fired = true })
	assert.True(t, fired)
}

func TestGateStartIsOneShot(t *testing.T) {
	g := newTestGate()
	g.Start(30 * time.Millisecond)
	endAt := g.endAt

	// A second Start must not rearm the countdown.
	g.Start(time.Hour)
	assert.Equal(t, endAt, g.endAt)

	waitExpired(t, g)
	g.Start(time.Hour)
	assert.Equal(t, Expired, g.State())
}

func TestGateStop(t *testing.T) {
	g := newTestGate()
	g.Start(time.Hour)
	g.Stop()
	assert.Equal(t, Idle, g.State())
	assert.False(t, g.Expired())
}

func TestGateStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "expired", Expired.String())
}
