package core

// EventKind classifies a controller event
type EventKind uint8

// Event kinds. Zero is reserved for empty ring slots.
const (
	EvtBoot           EventKind = 1 // Pins configured, all outputs off
	EvtPhaseOn        EventKind = 2 // Phase output asserted
	EvtPhaseOff       EventKind = 3 // Phase output cleared
	EvtRequest        EventKind = 4 // Request seen at a poll or checkpoint
	EvtDebounceReject EventKind = 5 // Request released before the debounce interval ended
	EvtState          EventKind = 6 // Main loop state changed
	EvtInvalidPhase   EventKind = 7 // activate/deactivate called with an undefined phase
	EvtFault          EventKind = 8 // HAL call returned an error
)

func (k EventKind) String() string {
	switch k {
	case EvtBoot:
		return "BOOT"
	case EvtPhaseOn:
		return "PHASE_ON"
	case EvtPhaseOff:
		return "PHASE_OFF"
	case EvtRequest:
		return "REQUEST"
	case EvtDebounceReject:
		return "DEBOUNCE_REJECT"
	case EvtState:
		return "STATE"
	case EvtInvalidPhase:
		return "INVALID_PHASE!"
	case EvtFault:
		return "FAULT!"
	default:
		return "UNKNOWN"
	}
}

// Event is one observable step of the controller
type Event struct {
	Kind  EventKind
	Phase Phase     // Phase involved (PHASE_ON/OFF, INVALID_PHASE)
	State LoopState // Loop state at the time of the event
	Clock uint32    // Milliseconds since boot
}

func (e Event) String() string {
	s := e.Kind.String() + " t=" + utoa(e.Clock) + " state=" + e.State.String()
	switch e.Kind {
	case EvtPhaseOn, EvtPhaseOff, EvtInvalidPhase:
		s += " phase=" + e.Phase.String()
	}
	return s
}

// EventSink receives every controller event as it happens.
// Implementations must not block for long; the control loop is waiting.
type EventSink interface {
	HandleEvent(ev Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) HandleEvent(ev Event) {
	f(ev)
}
