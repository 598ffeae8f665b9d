package core

import "errors"

// ErrInvalidPhase is returned when a phase value outside the defined set is used
var ErrInvalidPhase = errors.New("invalid phase")

// Signals owns the signal outputs. It is the only writer of the
// vehicle lamps, the walk lamp and the audible alert.
//
// Invariants kept by construction:
//   - at most one of green/yellow/red is driven high
//   - the walk lamp and the alert are switched together
type Signals struct {
	gpio  GPIODriver
	alert AlertDriver
	pins  PinMap

	// lit mirrors what was last successfully driven on each output
	lit [phaseCount]bool

	// report is called for every output change and every rejected phase
	report func(kind EventKind, p Phase)
}

// NewSignals binds the outputs. It does not touch the hardware.
func NewSignals(gpio GPIODriver, alert AlertDriver, pins PinMap) *Signals {
	return &Signals{
		gpio:   gpio,
		alert:  alert,
		pins:   pins,
		report: func(EventKind, Phase) {},
	}
}

// SetPhase clears every vehicle output and then asserts the output for p.
// PedestrianWalk asserts the walk lamp and the alert as a pair.
// An undefined p is rejected before any pin is written. If any vehicle
// output cannot be cleared, p is not asserted.
func (s *Signals) SetPhase(p Phase) error {
	if !p.Valid() {
		s.rejectPhase("activate", p)
		return ErrInvalidPhase
	}

	if err := s.clearVehicle(); err != nil {
		return err
	}

	var err error
	if p == PedestrianWalk {
		err = s.setWalk(true)
	} else {
		err = s.drive(p, true)
	}

	s.checkExclusion()
	return err
}

// Deactivate clears the output for p only. For PedestrianWalk
// both the walk lamp and the alert are cleared.
func (s *Signals) Deactivate(p Phase) error {
	if !p.Valid() {
		s.rejectPhase("deactivate", p)
		return ErrInvalidPhase
	}
	if p == PedestrianWalk {
		return s.setWalk(false)
	}
	return s.drive(p, false)
}

// AllOff clears every signal output including the alert
func (s *Signals) AllOff() error {
	err := s.clearVehicle()
	if werr := s.setWalk(false); werr != nil && err == nil {
		err = werr
	}
	return err
}

// WalkActive reads the walk lamp back from the pin
func (s *Signals) WalkActive() (bool, error) {
	return s.gpio.GetPin(s.pins.PedestrianWalk)
}

// Lit reports whether p's output was last driven high
func (s *Signals) Lit(p Phase) bool {
	if !p.Valid() {
		return false
	}
	return s.lit[p]
}

func (s *Signals) clearVehicle() error {
	var err error
	for _, v := range vehiclePhases {
		if verr := s.drive(v, false); verr != nil && err == nil {
			err = verr
		}
	}
	return err
}

// drive writes a single vehicle output
func (s *Signals) drive(p Phase, on bool) error {
	if err := s.gpio.SetPin(s.pins.outputPin(p), on); err != nil {
		return err
	}
	s.update(p, on)
	return nil
}

// setWalk switches the walk lamp and alert in one critical section.
// If either half fails while switching on, both are forced off again.
// If either half fails while switching off, the half that did switch is
// put back to its previous level, so the pair never ends up split.
func (s *Signals) setWalk(on bool) error {
	prev := s.lit[PedestrianWalk]
	var lampErr, alertErr error
	atomically(func() {
		lampErr = s.gpio.SetPin(s.pins.PedestrianWalk, on)
		alertErr = s.alert.SetAlert(on)
		switch {
		case lampErr == nil && alertErr == nil:
		case on:
			_ = s.gpio.SetPin(s.pins.PedestrianWalk, false)
			_ = s.alert.SetAlert(false)
		case lampErr != nil:
			_ = s.alert.SetAlert(prev)
		default:
			_ = s.gpio.SetPin(s.pins.PedestrianWalk, prev)
		}
	})

	if lampErr != nil {
		return lampErr
	}
	if alertErr != nil {
		return alertErr
	}
	s.update(PedestrianWalk, on)
	return nil
}

func (s *Signals) update(p Phase, on bool) {
	if s.lit[p] == on {
		return
	}
	s.lit[p] = on
	if on {
		s.report(EvtPhaseOn, p)
	} else {
		s.report(EvtPhaseOff, p)
	}
}

func (s *Signals) checkExclusion() {
	n := 0
	for _, v := range vehiclePhases {
		if s.lit[v] {
			n++
		}
	}
	if n > 1 {
		Diagnostic("signal: " + utoa(uint32(n)) + " vehicle outputs on at once")
	}
}

func (s *Signals) rejectPhase(op string, p Phase) {
	Diagnostic("signal: " + op + ": invalid phase " + utoa(uint32(p)))
	s.report(EvtInvalidPhase, p)
}
