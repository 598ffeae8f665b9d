package core

import (
	"errors"
	"strings"
	"testing"
)

const testAlertPin GPIOPin = 21

type pinWrite struct {
	at    uint32
	pin   GPIOPin
	level bool
}

type span struct {
	on, off uint32
}

// fakeBoard is a GPIO driver, alert and clock backed by memory.
// Time only moves when the controller sleeps.
type fakeBoard struct {
	t      *testing.T
	pins   PinMap
	now    uint32
	levels map[GPIOPin]bool
	modes  map[GPIOPin]string
	writes []pinWrite

	// pressed reports whether the request button is held at time ms
	pressed func(ms uint32) bool
	// onSleep runs after every sleep
	onSleep func()

	setErr      map[GPIOPin]error
	alertErr    error
	alertOffErr error

	exclusionViolations int
	pairViolations      int
}

func newFakeBoard(t *testing.T) *fakeBoard {
	return &fakeBoard{
		t:       t,
		pins:    DefaultPinMap(),
		levels:  make(map[GPIOPin]bool),
		modes:   make(map[GPIOPin]string),
		setErr:  make(map[GPIOPin]error),
		pressed: func(uint32) bool { return false },
	}
}

func (b *fakeBoard) hardware() Hardware {
	return Hardware{GPIO: b, Alert: b, Clock: b, Pins: b.pins}
}

func (b *fakeBoard) ConfigureOutput(pin GPIOPin) error {
	b.modes[pin] = "out"
	return nil
}

func (b *fakeBoard) ConfigureInputPullUp(pin GPIOPin) error {
	b.modes[pin] = "in-pullup"
	return nil
}

func (b *fakeBoard) SetPin(pin GPIOPin, value bool) error {
	if err := b.setErr[pin]; err != nil {
		return err
	}
	b.levels[pin] = value
	b.writes = append(b.writes, pinWrite{at: b.now, pin: pin, level: value})
	b.checkExclusion()
	return nil
}

func (b *fakeBoard) GetPin(pin GPIOPin) (bool, error) {
	if pin == b.pins.PedestrianRequest {
		// Active-low button with pull-up
		return !b.pressed(b.now), nil
	}
	return b.levels[pin], nil
}

func (b *fakeBoard) SetAlert(on bool) error {
	if b.alertErr != nil && on {
		return b.alertErr
	}
	if b.alertOffErr != nil && !on {
		return b.alertOffErr
	}
	b.levels[testAlertPin] = on
	b.writes = append(b.writes, pinWrite{at: b.now, pin: testAlertPin, level: on})
	return nil
}

func (b *fakeBoard) Sleep(ms uint32) {
	// Every sleep is a sequence boundary: the walk pair must agree here
	if b.levels[b.pins.PedestrianWalk] != b.levels[testAlertPin] {
		b.pairViolations++
	}
	b.now += ms
	if b.onSleep != nil {
		b.onSleep()
	}
}

func (b *fakeBoard) Now() uint32 {
	return b.now
}

func (b *fakeBoard) checkExclusion() {
	n := 0
	for _, pin := range []GPIOPin{b.pins.VehicleGreen, b.pins.VehicleYellow, b.pins.VehicleRed} {
		if b.levels[pin] {
			n++
		}
	}
	if n > 1 {
		b.exclusionViolations++
	}
}

// spans returns the intervals during which pin was high, up to the current time
func (b *fakeBoard) spans(pin GPIOPin) []span {
	var out []span
	on := false
	var since uint32
	for _, w := range b.writes {
		if w.pin != pin || w.level == on {
			continue
		}
		if w.level {
			since = w.at
		} else {
			out = append(out, span{on: since, off: w.at})
		}
		on = w.level
	}
	if on {
		out = append(out, span{on: since, off: b.now})
	}
	return out
}

// firstOn returns when pin first went high, or false
func (b *fakeBoard) firstOn(pin GPIOPin) (uint32, bool) {
	for _, w := range b.writes {
		if w.pin == pin && w.level {
			return w.at, true
		}
	}
	return 0, false
}

func (b *fakeBoard) litAt(pin GPIOPin, ms uint32) bool {
	for _, s := range b.spans(pin) {
		if s.on <= ms && ms < s.off {
			return true
		}
	}
	return false
}

// captureDebug routes debug output into a slice for the duration of the test
func captureDebug(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	ClearEvents()
	t.Cleanup(func() {
		SetDebugWriter(func(string) {})
		SetDebugEnabled(false)
		ClearEvents()
	})
	return &lines
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

var errStuckPin = errors.New("pin stuck")
