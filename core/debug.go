package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventRingSize is how many controller events are kept for post-mortem
const EventRingSize = 32

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether trace output is active.
	// Diagnostics are written regardless.
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventCount    uint32

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, stdout, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables trace output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether trace output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// emit writes through the async channel when it is running, directly otherwise
func emit(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
			// Channel full, drop message (non-blocking)
		}
		return
	}
	if debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugPrintln writes a trace message if tracing is enabled
func DebugPrintln(msg string) {
	if debugEnabled {
		emit(msg)
	}
}

// Diagnostic reports an error condition. Always written.
func Diagnostic(msg string) {
	emit("[ERROR] " + msg)
}

// RecordEvent captures a controller event in the ring buffer
func RecordEvent(ev Event) {
	idx := eventRingHead
	eventRing[idx] = ev
	eventRingHead = (idx + 1) % EventRingSize
	eventCount++
}

// DumpEvents outputs the event ring, oldest first
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	debugPrintln("[EVENTS] Total events recorded: " + utoa(eventCount))

	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		idx := (start + i) % EventRingSize
		evt := &eventRing[idx]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		debugPrintln("[EVENTS] " + evt.String())
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// RecentEvents returns the ring contents, oldest first
func RecentEvents() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Kind != 0 {
			out = append(out, evt)
		}
	}
	return out
}

// ClearEvents clears the event ring
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
	eventCount = 0
}
