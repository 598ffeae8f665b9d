//go:build tinygo

package core

import "runtime/interrupt"

// atomically runs fn with interrupts masked so no handler or
// scheduler switch can observe a half-written pin group
func atomically(fn func()) {
	state := interrupt.Disable()
	fn()
	interrupt.Restore(state)
}
