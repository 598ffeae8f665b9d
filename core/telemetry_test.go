package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswalk/protocol"
)

func TestTelemetryRoundTrip(t *testing.T) {
	captureDebug(t)
	board := newFakeBoard(t)
	c := newTestController(t, board)

	var wire bytes.Buffer
	var local []Event
	tel := NewTelemetry(&wire)
	c.SetEventSink(EventSinkFunc(func(ev Event) {
		local = append(local, ev)
		tel.HandleEvent(ev)
	}))
	board.pressed = func(ms uint32) bool { return ms < 500 }

	c.Step()

	dec := protocol.NewDecoder()
	dec.Write(wire.Bytes())
	var remote []Event
	for {
		f, ok := dec.Next()
		if !ok {
			break
		}
		remote = append(remote, EventFromFrame(f))
	}

	require.Len(t, remote, len(local))
	assert.Equal(t, local, remote)
	assert.Zero(t, dec.Errors())
	assert.Zero(t, dec.Gaps())
	assert.Zero(t, tel.Dropped())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("usb disconnected")
}

func TestTelemetryCountsDroppedFrames(t *testing.T) {
	tel := NewTelemetry(failingWriter{})
	tel.HandleEvent(Event{Kind: EvtBoot})
	tel.HandleEvent(Event{Kind: EvtPhaseOn, Phase: VehicleGreen})
	assert.Equal(t, uint32(2), tel.Dropped())
}
