package core

import (
	"io"

	"crosswalk/protocol"
)

// Telemetry is an EventSink that streams events as protocol frames
type Telemetry struct {
	w       io.Writer
	enc     *protocol.Encoder
	dropped uint32
}

// NewTelemetry creates a sink writing frames to w (usually the USB serial port)
func NewTelemetry(w io.Writer) *Telemetry {
	return &Telemetry{w: w, enc: protocol.NewEncoder()}
}

// HandleEvent encodes and writes ev. A failed write loses the frame;
// the host sees it as a sequence gap.
func (t *Telemetry) HandleEvent(ev Event) {
	block := t.enc.Encode(protocol.EventFrame{
		Kind:  uint8(ev.Kind),
		Phase: uint8(ev.Phase),
		State: uint8(ev.State),
		Clock: ev.Clock,
	})
	if _, err := t.w.Write(block); err != nil {
		t.dropped++
	}
}

// Dropped returns the number of frames that could not be written
func (t *Telemetry) Dropped() uint32 {
	return t.dropped
}

// EventFromFrame converts a decoded frame back to an Event
func EventFromFrame(f protocol.EventFrame) Event {
	return Event{
		Kind:  EventKind(f.Kind),
		Phase: Phase(f.Phase),
		State: LoopState(f.State),
		Clock: f.Clock,
	}
}
