package sim

import (
	"sync/atomic"
	"time"
)

// ScaledClock is a core.Clock that runs Speed times faster than real time.
// Now reports simulated milliseconds, so timings in the trace read the
// same as on hardware.
type ScaledClock struct {
	speed   uint32
	now     atomic.Uint32
	onSleep func()
}

// NewScaledClock creates a clock. A speed of 0 is treated as 1.
func NewScaledClock(speed uint32) *ScaledClock {
	if speed == 0 {
		speed = 1
	}
	return &ScaledClock{speed: speed}
}

// OnSleep registers fn to run at the start of every Sleep, before time
// advances. Set it before the controller starts.
func (c *ScaledClock) OnSleep(fn func()) {
	c.onSleep = fn
}

func (c *ScaledClock) Sleep(ms uint32) {
	if c.onSleep != nil {
		c.onSleep()
	}
	if d := c.Real(ms); d > 0 {
		t := time.NewTimer(d)
		<-t.C
	}
	c.now.Add(ms)
}

func (c *ScaledClock) Now() uint32 {
	return c.now.Load()
}

// Real converts a simulated duration in milliseconds to wall time
func (c *ScaledClock) Real(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond / time.Duration(c.speed)
}
