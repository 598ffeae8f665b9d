package core

import "time"

// Clock supplies the controller's notion of time.
// Sleep blocks the calling goroutine only; other goroutines (USB, telemetry) keep running.
type Clock interface {
	// Sleep blocks for ms milliseconds
	Sleep(ms uint32)

	// Now returns milliseconds since the clock was created
	Now() uint32
}

// SystemClock is a Clock backed by the runtime timer.
// Under TinyGo the sleeping goroutine is parked until the hardware alarm fires.
type SystemClock struct {
	boot time.Time
}

// NewSystemClock returns a clock whose zero is the moment of the call
func NewSystemClock() *SystemClock {
	return &SystemClock{boot: time.Now()}
}

func (c *SystemClock) Sleep(ms uint32) {
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	<-t.C
}

func (c *SystemClock) Now() uint32 {
	return uint32(time.Since(c.boot) / time.Millisecond)
}
