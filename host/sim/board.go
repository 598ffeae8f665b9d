// Package sim provides an in-memory board so the controller can run on a
// workstation: GPIO pins, a request button, a walk alert and a scaled clock.
package sim

import (
	"fmt"
	"strings"
	"sync"

	"crosswalk/core"
)

type pinMode uint8

const (
	modeUnset pinMode = iota
	modeOutput
	modeInputPullUp
)

// Board implements core.GPIODriver and core.AlertDriver.
// It is safe to press the button from another goroutine while the
// controller runs.
type Board struct {
	mu     sync.Mutex
	pins   core.PinMap
	modes  map[core.GPIOPin]pinMode
	levels map[core.GPIOPin]bool
	button bool
	alert  bool

	onChange func(Lamps)
	reported Lamps
}

// Lamps is a snapshot of every output the controller drives
type Lamps struct {
	Green, Yellow, Red, Walk, Alert bool
}

// String draws the lamps as a single console line
func (l Lamps) String() string {
	lamp := func(on bool, name string) string {
		if on {
			return "[" + strings.ToUpper(name) + "]"
		}
		return "[" + strings.Repeat(" ", len(name)) + "]"
	}
	return fmt.Sprintf("%s %s %s  %s %s",
		lamp(l.Green, "g"), lamp(l.Yellow, "y"), lamp(l.Red, "r"),
		lamp(l.Walk, "walk"), lamp(l.Alert, "beep"))
}

// NewBoard creates a board wired according to pins
func NewBoard(pins core.PinMap) *Board {
	return &Board{
		pins:   pins,
		modes:  make(map[core.GPIOPin]pinMode),
		levels: make(map[core.GPIOPin]bool),
	}
}

// OnChange registers fn to be called with the new lamp state whenever
// Settle finds the outputs changed. Writes between two Settle calls are
// reported as one update, so a pair switched together is never seen split.
func (b *Board) OnChange(fn func(Lamps)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Settle reports the lamp state if it differs from the last report.
// The controller only sleeps between complete output updates, so
// ScaledClock.OnSleep(board.Settle) reports at those boundaries.
func (b *Board) Settle() {
	b.mu.Lock()
	lamps, fn := b.snapshot(), b.onChange
	changed := lamps != b.reported
	b.reported = lamps
	b.mu.Unlock()

	if changed && fn != nil {
		fn(lamps)
	}
}

func (b *Board) ConfigureOutput(pin core.GPIOPin) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin == b.pins.PedestrianRequest {
		return fmt.Errorf("gpio%d is the request input", pin)
	}
	b.modes[pin] = modeOutput
	b.levels[pin] = false
	return nil
}

func (b *Board) ConfigureInputPullUp(pin core.GPIOPin) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes[pin] = modeInputPullUp
	return nil
}

func (b *Board) SetPin(pin core.GPIOPin, value bool) error {
	b.mu.Lock()
	if b.modes[pin] != modeOutput {
		b.mu.Unlock()
		return fmt.Errorf("gpio%d not configured as output", pin)
	}
	b.levels[pin] = value
	b.mu.Unlock()
	return nil
}

func (b *Board) GetPin(pin core.GPIOPin) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.modes[pin] {
	case modeOutput:
		return b.levels[pin], nil
	case modeInputPullUp:
		if pin == b.pins.PedestrianRequest {
			// Button shorts the pulled-up line to ground
			return !b.button, nil
		}
		return true, nil
	default:
		return false, fmt.Errorf("gpio%d not configured", pin)
	}
}

func (b *Board) SetAlert(on bool) error {
	b.mu.Lock()
	b.alert = on
	b.mu.Unlock()
	return nil
}

// Press holds the request button down
func (b *Board) Press() {
	b.mu.Lock()
	b.button = true
	b.mu.Unlock()
}

// Release lets the request button go
func (b *Board) Release() {
	b.mu.Lock()
	b.button = false
	b.mu.Unlock()
}

// Lamps returns the current output state
func (b *Board) Lamps() Lamps {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Board) snapshot() Lamps {
	return Lamps{
		Green:  b.levels[b.pins.VehicleGreen],
		Yellow: b.levels[b.pins.VehicleYellow],
		Red:    b.levels[b.pins.VehicleRed],
		Walk:   b.levels[b.pins.PedestrianWalk],
		Alert:  b.alert,
	}
}
