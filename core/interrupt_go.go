//go:build !tinygo

package core

// atomically runs fn as one unit with respect to the pins.
// Host builds have no interrupt handlers touching GPIO, so there is nothing to mask.
func atomically(fn func()) {
	fn()
}
