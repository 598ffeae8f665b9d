// Package monitor decodes the controller's telemetry stream on the host,
// prints a timeline and checks the signal invariants from the outside.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"crosswalk/core"
	"crosswalk/protocol"
)

const feedChunk = 256

const clockWrapSpan = 1 << 31

// Violation is an invariant breach observed in the event stream
type Violation struct {
	Session uuid.UUID
	Clock   uint32
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("t=%d %s", v.Clock, v.Message)
}

// Session is one boot of the controller
type Session struct {
	ID      uuid.UUID
	Started time.Time
	Events  int
}

// Monitor consumes telemetry bytes and tracks what the board is showing
type Monitor struct {
	out     io.Writer
	dec     *protocol.Decoder
	verbose bool

	session   *Session
	lastClock uint32
	lit       [4]bool
	since     [4]uint32

	dwells     map[core.Phase][]uint32
	crossings  int
	faults     int
	violations []Violation

	// Seams for tests
	now   func() time.Time
	newID func() uuid.UUID
}

// New creates a monitor printing to out
func New(out io.Writer, verbose bool) *Monitor {
	return &Monitor{
		out:     out,
		dec:     protocol.NewDecoder(),
		verbose: verbose,
		dwells:  make(map[core.Phase][]uint32),
		now:     time.Now,
		newID:   uuid.New,
	}
}

// Run reads from r until it fails. With follow set, io.EOF is treated as
// a read timeout on a quiet line and reading continues. Closing r from
// another goroutine ends Run without an error.
func (m *Monitor) Run(r io.Reader, follow bool) error {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if follow {
					continue
				}
				return nil
			}
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// Feed decodes raw bytes and handles every complete frame
func (m *Monitor) Feed(p []byte) {
	for len(p) > 0 {
		// Drain between chunks so a large capture cannot overflow the decoder
		chunk := p
		if len(chunk) > feedChunk {
			chunk = chunk[:feedChunk]
		}
		m.dec.Write(chunk)
		p = p[len(chunk):]

		for {
			f, ok := m.dec.Next()
			if !ok {
				break
			}
			m.Handle(core.EventFromFrame(f))
		}
	}
}

// Handle applies one event
func (m *Monitor) Handle(ev core.Event) {
	if ev.Kind == core.EvtBoot || m.session == nil {
		m.startSession(ev)
	}
	m.session.Events++

	// A backward step of more than half the range is the ms counter wrapping
	if ev.Clock < m.lastClock && m.lastClock-ev.Clock < clockWrapSpan {
		m.violate(ev.Clock, fmt.Sprintf("clock went backwards from %d without a boot", m.lastClock))
	}
	m.lastClock = ev.Clock

	switch ev.Kind {
	case core.EvtPhaseOn:
		m.phaseOn(ev)
	case core.EvtPhaseOff:
		m.phaseOff(ev)
	case core.EvtState:
		if ev.State == core.PedestrianActive {
			m.crossings++
		}
		m.printf(ev.Clock, "state %s", ev.State)
	case core.EvtRequest:
		m.printf(ev.Clock, "request button held")
	case core.EvtDebounceReject:
		m.printf(ev.Clock, "request released during debounce")
	case core.EvtInvalidPhase:
		m.printf(ev.Clock, "controller rejected %s", ev.Phase)
	case core.EvtFault:
		m.faults++
		m.printf(ev.Clock, "controller reported a hardware fault")
	}
}

// Violations returns every invariant breach seen so far
func (m *Monitor) Violations() []Violation {
	return m.violations
}

// Session returns the current boot session, nil before the first event
func (m *Monitor) Session() *Session {
	return m.session
}

// Dwells returns the completed on-times of p in milliseconds
func (m *Monitor) Dwells(p core.Phase) []uint32 {
	return m.dwells[p]
}

// Stats returns decoder error, gap and overflow counters
func (m *Monitor) Stats() (errs, gaps, overflow uint32) {
	return m.dec.Errors(), m.dec.Gaps(), m.dec.Overflow()
}

// PrintSummary writes per-phase dwell statistics and counters
func (m *Monitor) PrintSummary() {
	fmt.Fprintln(m.out, "Summary")
	fmt.Fprintln(m.out, "=======")

	phases := make([]core.Phase, 0, len(m.dwells))
	for p := range m.dwells {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i] < phases[j] })

	for _, p := range phases {
		d := m.dwells[p]
		var total uint64
		minD, maxD := d[0], d[0]
		for _, v := range d {
			total += uint64(v)
			if v < minD {
				minD = v
			}
			if v > maxD {
				maxD = v
			}
		}
		fmt.Fprintf(m.out, "  %-7s n=%-4d avg=%6dms min=%6dms max=%6dms\n",
			p, len(d), total/uint64(len(d)), minD, maxD)
	}

	errs, gaps, overflow := m.Stats()
	fmt.Fprintf(m.out, "  crossings=%d faults=%d violations=%d\n", m.crossings, m.faults, len(m.violations))
	fmt.Fprintf(m.out, "  frame errors=%d gaps=%d overflow=%d\n", errs, gaps, overflow)
}

func (m *Monitor) startSession(ev core.Event) {
	m.session = &Session{ID: m.newID(), Started: m.now()}
	m.lastClock = 0
	m.lit = [4]bool{}
	m.since = [4]uint32{}
	fmt.Fprintf(m.out, "session %s started (board clock %d ms)\n", m.session.ID, ev.Clock)
}

func (m *Monitor) phaseOn(ev core.Event) {
	if !ev.Phase.Valid() {
		m.violate(ev.Clock, fmt.Sprintf("undefined %s switched on", ev.Phase))
		return
	}

	if ev.Phase.IsVehicle() {
		for _, other := range []core.Phase{core.VehicleGreen, core.VehicleYellow, core.VehicleRed} {
			if other != ev.Phase && m.lit[other] {
				m.violate(ev.Clock, fmt.Sprintf("%s on while %s is on", ev.Phase, other))
			}
		}
		if m.lit[core.PedestrianWalk] {
			m.violate(ev.Clock, fmt.Sprintf("%s on during the walk signal", ev.Phase))
		}
	} else {
		for _, v := range []core.Phase{core.VehicleGreen, core.VehicleYellow, core.VehicleRed} {
			if m.lit[v] {
				m.violate(ev.Clock, fmt.Sprintf("walk on while %s is on", v))
			}
		}
	}

	m.lit[ev.Phase] = true
	m.since[ev.Phase] = ev.Clock
	m.printf(ev.Clock, "%s on", ev.Phase)
}

func (m *Monitor) phaseOff(ev core.Event) {
	if !ev.Phase.Valid() || !m.lit[ev.Phase] {
		// Joined mid-session: nothing to measure
		return
	}
	m.lit[ev.Phase] = false
	dwell := ev.Clock - m.since[ev.Phase]
	m.dwells[ev.Phase] = append(m.dwells[ev.Phase], dwell)
	m.printf(ev.Clock, "%s off after %d ms", ev.Phase, dwell)
}

func (m *Monitor) violate(clock uint32, msg string) {
	v := Violation{Session: m.session.ID, Clock: clock, Message: msg}
	m.violations = append(m.violations, v)
	fmt.Fprintf(m.out, "VIOLATION %s\n", v)
}

func (m *Monitor) printf(clock uint32, format string, args ...interface{}) {
	if !m.verbose && !importantFormat(format) {
		return
	}
	fmt.Fprintf(m.out, "[%8.1fs] %s\n", float64(clock)/1000, fmt.Sprintf(format, args...))
}

// importantFormat keeps phase changes and faults visible without -verbose
func importantFormat(format string) bool {
	switch format {
	case "%s on", "%s off after %d ms", "controller reported a hardware fault", "controller rejected %s":
		return true
	}
	return false
}
