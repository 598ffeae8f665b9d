package monitor

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswalk/core"
)

var testSession = uuid.MustParse("6f1c1f5e-2b1e-4c55-9a63-0d6a0c1f2e01")

func newTestMonitor(verbose bool) (*Monitor, *bytes.Buffer) {
	var out bytes.Buffer
	m := New(&out, verbose)
	m.newID = func() uuid.UUID { return testSession }
	m.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return m, &out
}

func on(p core.Phase, clock uint32) core.Event {
	return core.Event{Kind: core.EvtPhaseOn, Phase: p, Clock: clock}
}

func off(p core.Phase, clock uint32) core.Event {
	return core.Event{Kind: core.EvtPhaseOff, Phase: p, Clock: clock}
}

// encode renders events exactly as the board would send them
func encode(events ...core.Event) []byte {
	var buf bytes.Buffer
	tel := core.NewTelemetry(&buf)
	for _, ev := range events {
		tel.HandleEvent(ev)
	}
	return buf.Bytes()
}

func normalCycle() []core.Event {
	return []core.Event{
		{Kind: core.EvtBoot},
		on(core.VehicleGreen, 0),
		off(core.VehicleGreen, 8000),
		on(core.VehicleYellow, 8000),
		off(core.VehicleYellow, 10000),
		on(core.VehicleRed, 10000),
		off(core.VehicleRed, 20000),
	}
}

func TestMonitorDwellTimes(t *testing.T) {
	m, _ := newTestMonitor(false)
	m.Feed(encode(normalCycle()...))

	assert.Equal(t, []uint32{8000}, m.Dwells(core.VehicleGreen))
	assert.Equal(t, []uint32{2000}, m.Dwells(core.VehicleYellow))
	assert.Equal(t, []uint32{10000}, m.Dwells(core.VehicleRed))
	assert.Empty(t, m.Violations())

	require.NotNil(t, m.Session())
	assert.Equal(t, testSession, m.Session().ID)
	assert.Equal(t, 7, m.Session().Events)
}

func TestMonitorCrossingIsClean(t *testing.T) {
	m, _ := newTestMonitor(true)
	m.Feed(encode(
		core.Event{Kind: core.EvtBoot},
		on(core.VehicleGreen, 0),
		core.Event{Kind: core.EvtRequest, Clock: 3000},
		core.Event{Kind: core.EvtState, State: core.PedestrianDebounce, Clock: 3000},
		core.Event{Kind: core.EvtState, State: core.PedestrianActive, Clock: 3300},
		off(core.VehicleGreen, 3300),
		on(core.VehicleYellow, 3300),
		off(core.VehicleYellow, 8300),
		on(core.VehicleRed, 8300),
		off(core.VehicleRed, 23300),
		on(core.PedestrianWalk, 23300),
		off(core.PedestrianWalk, 38300),
	))

	assert.Empty(t, m.Violations())
	assert.Equal(t, []uint32{15000}, m.Dwells(core.PedestrianWalk))
	assert.Equal(t, 1, m.crossings)
}

func TestMonitorFlagsTwoVehiclePhases(t *testing.T) {
	m, out := newTestMonitor(false)
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleGreen, 0))
	m.Handle(on(core.VehicleRed, 100))

	v := m.Violations()
	require.Len(t, v, 1)
	assert.Equal(t, uint32(100), v[0].Clock)
	assert.Equal(t, testSession, v[0].Session)
	assert.Contains(t, v[0].Message, "red on while green is on")
	assert.Contains(t, out.String(), "VIOLATION t=100")
}

func TestMonitorFlagsWalkWithTraffic(t *testing.T) {
	m, _ := newTestMonitor(false)
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleRed, 0))
	m.Handle(on(core.PedestrianWalk, 10))
	m.Handle(on(core.VehicleGreen, 20))

	v := m.Violations()
	require.Len(t, v, 3)
	assert.Contains(t, v[0].Message, "walk on while red is on")
	assert.Contains(t, v[1].Message, "green on while red is on")
	assert.Contains(t, v[2].Message, "green on during the walk signal")
}

func TestMonitorClockBackwards(t *testing.T) {
	m, _ := newTestMonitor(false)
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleGreen, 5000))
	m.Handle(off(core.VehicleGreen, 4000))
	require.Len(t, m.Violations(), 1)
	assert.Contains(t, m.Violations()[0].Message, "clock went backwards")

	// A reboot legitimately restarts the clock
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleGreen, 0))
	assert.Len(t, m.Violations(), 1)
}

func TestMonitorClockWrap(t *testing.T) {
	m, _ := newTestMonitor(false)
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleGreen, 0xFFFFF000))
	m.Handle(off(core.VehicleGreen, 3904))

	// About 49.7 days of uptime rolls the counter over: not a violation
	assert.Empty(t, m.Violations())
	assert.Equal(t, []uint32{8000}, m.Dwells(core.VehicleGreen))
}

func TestMonitorRebootResetsLitState(t *testing.T) {
	m, _ := newTestMonitor(false)
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleGreen, 0))
	m.Handle(core.Event{Kind: core.EvtBoot})
	m.Handle(on(core.VehicleRed, 0))

	assert.Empty(t, m.Violations())
}

func TestMonitorJoinMidSession(t *testing.T) {
	m, out := newTestMonitor(false)
	// Missed the boot and the green switch-on
	m.Handle(off(core.VehicleGreen, 48000))
	m.Handle(on(core.VehicleYellow, 48000))

	assert.Empty(t, m.Violations())
	assert.Empty(t, m.Dwells(core.VehicleGreen))
	assert.Contains(t, out.String(), "session "+testSession.String())
}

func TestMonitorRunStopsAtEOF(t *testing.T) {
	m, _ := newTestMonitor(false)
	stream := encode(normalCycle()...)
	// Line noise before the first block
	stream = append([]byte("\x00\x13garbage"), stream...)

	err := m.Run(bytes.NewReader(stream), false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{8000}, m.Dwells(core.VehicleGreen))

	errs, gaps, _ := m.Stats()
	assert.Positive(t, errs)
	assert.Zero(t, gaps)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestMonitorRunReturnsReadError(t *testing.T) {
	m, _ := newTestMonitor(false)
	err := m.Run(failingReader{io.ErrClosedPipe}, true)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestMonitorRunEndsWhenSourceClosed(t *testing.T) {
	m, _ := newTestMonitor(false)
	err := m.Run(failingReader{os.ErrClosed}, true)
	assert.NoError(t, err)
}

func TestMonitorSummary(t *testing.T) {
	m, out := newTestMonitor(false)
	events := normalCycle()
	events = append(events,
		on(core.VehicleGreen, 20000),
		off(core.VehicleGreen, 21000),
		core.Event{Kind: core.EvtFault, Clock: 21000},
	)
	m.Feed(encode(events...))
	out.Reset()

	m.PrintSummary()
	s := out.String()
	assert.Contains(t, s, "green   n=2")
	assert.Contains(t, s, "min=  1000ms max=  8000ms")
	assert.Contains(t, s, "faults=1 violations=0")
	assert.True(t, strings.HasPrefix(s, "Summary\n"))
}

func TestMonitorQuietUnlessVerbose(t *testing.T) {
	quiet, qout := newTestMonitor(false)
	loud, lout := newTestMonitor(true)
	ev := core.Event{Kind: core.EvtRequest, Clock: 1000}
	quiet.Handle(ev)
	loud.Handle(ev)

	assert.NotContains(t, qout.String(), "request button held")
	assert.Contains(t, lout.String(), "request button held")
}
