package sim

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswalk/core"
	"crosswalk/host/monitor"
)

func TestBoardRequiresConfiguredPins(t *testing.T) {
	b := NewBoard(core.DefaultPinMap())

	assert.Error(t, b.SetPin(13, true))
	_, err := b.GetPin(10)
	assert.Error(t, err)

	require.NoError(t, b.ConfigureOutput(13))
	require.NoError(t, b.SetPin(13, true))
	level, err := b.GetPin(13)
	require.NoError(t, err)
	assert.True(t, level)

	assert.Error(t, b.ConfigureOutput(10), "request pin cannot drive")
}

func TestBoardButtonIsActiveLow(t *testing.T) {
	pins := core.DefaultPinMap()
	b := NewBoard(pins)
	require.NoError(t, b.ConfigureInputPullUp(pins.PedestrianRequest))

	level, err := b.GetPin(pins.PedestrianRequest)
	require.NoError(t, err)
	assert.True(t, level, "released button reads high")

	b.Press()
	level, _ = b.GetPin(pins.PedestrianRequest)
	assert.False(t, level)

	b.Release()
	level, _ = b.GetPin(pins.PedestrianRequest)
	assert.True(t, level)
}

func TestBoardOnChangeOnlyOnEdges(t *testing.T) {
	pins := core.DefaultPinMap()
	b := NewBoard(pins)
	require.NoError(t, b.ConfigureOutput(pins.VehicleRed))

	var seen []Lamps
	b.OnChange(func(l Lamps) { seen = append(seen, l) })

	require.NoError(t, b.SetPin(pins.VehicleRed, true))
	b.Settle()
	require.NoError(t, b.SetPin(pins.VehicleRed, true))
	b.Settle()
	require.NoError(t, b.SetAlert(true))
	require.NoError(t, b.SetAlert(true))
	b.Settle()

	require.Len(t, seen, 2)
	assert.Equal(t, Lamps{Red: true}, seen[0])
	assert.Equal(t, Lamps{Red: true, Alert: true}, seen[1])
}

func TestBoardSettleCoalescesWrites(t *testing.T) {
	pins := core.DefaultPinMap()
	b := NewBoard(pins)
	require.NoError(t, b.ConfigureOutput(pins.VehicleRed))
	require.NoError(t, b.ConfigureOutput(pins.PedestrianWalk))

	var seen []Lamps
	b.OnChange(func(l Lamps) { seen = append(seen, l) })

	require.NoError(t, b.SetPin(pins.VehicleRed, true))
	require.NoError(t, b.SetPin(pins.VehicleRed, false))
	require.NoError(t, b.SetPin(pins.PedestrianWalk, true))
	assert.Empty(t, seen, "nothing is reported until the outputs settle")

	require.NoError(t, b.SetAlert(true))
	b.Settle()
	require.Len(t, seen, 1)
	assert.Equal(t, Lamps{Walk: true, Alert: true}, seen[0])

	// Back to the reported state between settles: no update
	require.NoError(t, b.SetAlert(false))
	require.NoError(t, b.SetAlert(true))
	b.Settle()
	assert.Len(t, seen, 1)
}

func TestLampsString(t *testing.T) {
	assert.Equal(t, "[ ] [ ] [R]  [    ] [    ]", Lamps{Red: true}.String())
	assert.Equal(t, "[ ] [ ] [ ]  [WALK] [BEEP]", Lamps{Walk: true, Alert: true}.String())
}

func TestScaledClock(t *testing.T) {
	c := NewScaledClock(1000)
	start := time.Now()
	c.Sleep(2000)
	c.Sleep(500)

	assert.Equal(t, uint32(2500), c.Now())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 2*time.Millisecond, c.Real(2000))
	assert.Equal(t, time.Second, NewScaledClock(0).Real(1000))
}

func TestScaledClockOnSleep(t *testing.T) {
	c := NewScaledClock(1000)
	var at []uint32
	c.OnSleep(func() { at = append(at, c.Now()) })

	c.Sleep(10)
	c.Sleep(20)
	assert.Equal(t, []uint32{0, 10}, at, "hook runs before time advances")
}

func newSimController(t *testing.T) (*core.Controller, *Board, *ScaledClock) {
	t.Helper()
	core.SetDebugWriter(func(string) {})
	t.Cleanup(func() { core.ClearEvents() })

	pins := core.DefaultPinMap()
	board := NewBoard(pins)
	clock := NewScaledClock(20000)
	c := core.NewController(core.Hardware{GPIO: board, Alert: board, Clock: clock, Pins: pins})
	require.NoError(t, c.Init())
	return c, board, clock
}

func TestSimulatedCrossing(t *testing.T) {
	c, board, clock := newSimController(t)

	var history []Lamps
	board.OnChange(func(l Lamps) { history = append(history, l) })
	clock.OnSleep(board.Settle)

	board.Press()
	c.Step()
	board.Settle()

	var walked bool
	for _, l := range history {
		if l.Walk {
			walked = true
			assert.True(t, l.Alert, "walk lamp without the alert")
			assert.False(t, l.Green || l.Yellow || l.Red, "traffic lamp during walk: %s", l)
		}
		n := 0
		for _, on := range []bool{l.Green, l.Yellow, l.Red} {
			if on {
				n++
			}
		}
		assert.LessOrEqual(t, n, 1, "%s", l)
	}
	assert.True(t, walked)
}

func TestSimulatedRunMonitoredClean(t *testing.T) {
	c, board, _ := newSimController(t)

	var wire bytes.Buffer
	c.SetEventSink(core.NewTelemetry(&wire))

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		c.Run(stop)
		close(done)
	}()

	board.Press()
	time.Sleep(5 * time.Millisecond)
	board.Release()
	time.Sleep(5 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}

	mon := monitor.New(io.Discard, false)
	mon.Feed(wire.Bytes())
	assert.Empty(t, mon.Violations())
	require.NotNil(t, mon.Session())
	assert.Positive(t, mon.Session().Events)
}
