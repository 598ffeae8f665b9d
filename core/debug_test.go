package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRingKeepsNewest(t *testing.T) {
	captureDebug(t)

	for i := uint32(1); i <= EventRingSize+5; i++ {
		RecordEvent(Event{Kind: EvtRequest, Clock: i})
	}

	events := RecentEvents()
	assert.Len(t, events, EventRingSize)
	assert.Equal(t, uint32(6), events[0].Clock)
	assert.Equal(t, uint32(EventRingSize+5), events[len(events)-1].Clock)
}

func TestDumpEvents(t *testing.T) {
	lines := captureDebug(t)

	RecordEvent(Event{Kind: EvtPhaseOn, Phase: VehicleRed, Clock: 10000})
	RecordEvent(Event{Kind: EvtInvalidPhase, Phase: Phase(9), Clock: 10001})
	DumpEvents()

	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "Total events recorded: 2")
	assert.Contains(t, out, "PHASE_ON t=10000 state=normal phase=red")
	assert.Contains(t, out, "INVALID_PHASE! t=10001 state=normal phase=phase(9)")
}

func TestDiagnosticIgnoresTraceSwitch(t *testing.T) {
	lines := captureDebug(t)
	SetDebugEnabled(false)

	DebugPrintln("trace")
	Diagnostic("broken")

	assert.Equal(t, []string{"[ERROR] broken"}, *lines)
	assert.False(t, IsDebugEnabled())
}

func TestUtoa(t *testing.T) {
	assert.Equal(t, "0", utoa(0))
	assert.Equal(t, "8000", utoa(8000))
	assert.Equal(t, "4294967295", utoa(4294967295))
}
