package core

import "errors"

// LoopState is the state of the main control loop
type LoopState uint8

const (
	NormalCycling LoopState = iota
	PedestrianDebounce
	PedestrianActive
)

func (s LoopState) String() string {
	switch s {
	case NormalCycling:
		return "normal"
	case PedestrianDebounce:
		return "debounce"
	case PedestrianActive:
		return "crossing"
	default:
		return "unknown"
	}
}

// Hardware is everything the controller needs from the board
type Hardware struct {
	GPIO  GPIODriver
	Alert AlertDriver
	Clock Clock
	Pins  PinMap
}

// Controller sequences the vehicle lamps and runs the pedestrian
// crossing when the request button is held.
//
// It is driven from a single goroutine. Pedestrian requests are only
// observed at the top of each Step and at the 1 s checkpoints inside
// vehicle phases; every other wait runs to completion.
type Controller struct {
	hw      Hardware
	signals *Signals
	state   LoopState
	sink    EventSink

	stop <-chan struct{}
}

// NewController creates a controller. Call Init before running it.
func NewController(hw Hardware) *Controller {
	c := &Controller{
		hw:    hw,
		state: NormalCycling,
	}
	c.signals = NewSignals(hw.GPIO, hw.Alert, hw.Pins)
	c.signals.report = c.record
	return c
}

// SetEventSink registers a receiver for every controller event
func (c *Controller) SetEventSink(sink EventSink) {
	c.sink = sink
}

// Signals exposes the phase primitives
func (c *Controller) Signals() *Signals {
	return c.signals
}

// State returns the current main loop state
func (c *Controller) State() LoopState {
	return c.state
}

// Init configures the signal outputs and the request input and
// switches everything off
func (c *Controller) Init() error {
	pins := c.hw.Pins
	for _, pin := range []GPIOPin{pins.VehicleGreen, pins.VehicleYellow, pins.VehicleRed, pins.PedestrianWalk} {
		if err := c.hw.GPIO.ConfigureOutput(pin); err != nil {
			Diagnostic("init: configure " + pinName(pin) + " failed: " + err.Error())
			return err
		}
	}
	if err := c.hw.GPIO.ConfigureInputPullUp(pins.PedestrianRequest); err != nil {
		Diagnostic("init: configure " + pinName(pins.PedestrianRequest) + " failed: " + err.Error())
		return err
	}
	if err := c.signals.AllOff(); err != nil {
		c.fault("all off", err)
		return err
	}

	c.record(EvtBoot, 0)
	return nil
}

// Run executes Step until stop is closed. A nil stop runs forever.
func (c *Controller) Run(stop <-chan struct{}) {
	c.stop = stop
	defer func() { c.stop = nil }()

	for !c.stopped() {
		c.Step()
	}
}

// Step runs one iteration of the main loop: poll the request, debounce
// and cross if it is held, then run the vehicle cycle.
func (c *Controller) Step() {
	if c.RequestAsserted() {
		c.record(EvtRequest, 0)
		c.setState(PedestrianDebounce)

		if c.debounce() {
			c.setState(PedestrianActive)
			c.RunPedestrianSequence()
		} else {
			c.record(EvtDebounceReject, 0)
		}
		c.setState(NormalCycling)
	}

	c.RunVehicleCycle()
}

// RunVehicleCycle runs Green, Yellow, Red once. It does nothing while the
// walk lamp is on. Returns true if a request (or stop) cut a phase short;
// the crossing itself is left to the main loop.
func (c *Controller) RunVehicleCycle() bool {
	walking, err := c.signals.WalkActive()
	if err != nil {
		c.fault("read walk lamp", err)
		return false
	}
	if walking {
		DebugPrintln("cycle: walk lamp on, skipping")
		return false
	}

	for _, step := range vehicleCycle {
		if err := c.signals.SetPhase(step.phase); err != nil {
			c.fault("set "+step.phase.String(), err)
		}
		if c.waitInterruptible(step.dwellMS) {
			return true
		}
	}
	return false
}

// RunPedestrianSequence stops traffic and gives pedestrians the crossing.
// None of its waits can be interrupted.
func (c *Controller) RunPedestrianSequence() {
	DebugPrintln("crossing: start")

	for _, v := range vehiclePhases {
		c.deactivate(v)
	}

	c.activate(VehicleYellow)
	c.hw.Clock.Sleep(ClearanceYellowMS)

	c.activate(VehicleRed)
	c.hw.Clock.Sleep(ClearanceRedMS)

	c.activate(PedestrianWalk)
	c.hw.Clock.Sleep(WalkMS)

	c.deactivate(PedestrianWalk)
	c.deactivate(VehicleRed)

	DebugPrintln("crossing: done")
}

// RequestAsserted samples the request input (active-low).
// A read failure counts as not pressed.
func (c *Controller) RequestAsserted() bool {
	level, err := c.hw.GPIO.GetPin(c.hw.Pins.PedestrianRequest)
	if err != nil {
		c.fault("read request", err)
		return false
	}
	return !level
}

// debounce waits DebounceMS and reports whether the request is still held
func (c *Controller) debounce() bool {
	c.hw.Clock.Sleep(DebounceMS)
	return c.RequestAsserted()
}

// waitInterruptible sleeps ms in CheckpointMS slices, sampling the request
// after each one. Returns true if the wait was cut short.
func (c *Controller) waitInterruptible(ms uint32) bool {
	for elapsed := uint32(0); elapsed < ms; {
		slice := uint32(CheckpointMS)
		if ms-elapsed < slice {
			slice = ms - elapsed
		}
		c.hw.Clock.Sleep(slice)
		elapsed += slice

		if c.stopped() {
			return true
		}
		if c.RequestAsserted() {
			c.record(EvtRequest, 0)
			return true
		}
	}
	return false
}

func (c *Controller) activate(p Phase) {
	if err := c.signals.SetPhase(p); err != nil {
		c.fault("activate "+p.String(), err)
	}
}

func (c *Controller) deactivate(p Phase) {
	if err := c.signals.Deactivate(p); err != nil {
		c.fault("deactivate "+p.String(), err)
	}
}

func (c *Controller) setState(s LoopState) {
	if c.state == s {
		return
	}
	c.state = s
	c.record(EvtState, 0)
}

func (c *Controller) stopped() bool {
	if c.stop == nil {
		return false
	}
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// fault reports a HAL error. Invalid phases are already reported by Signals.
func (c *Controller) fault(op string, err error) {
	if errors.Is(err, ErrInvalidPhase) {
		return
	}
	Diagnostic("controller: " + op + ": " + err.Error())
	c.record(EvtFault, 0)
}

func (c *Controller) record(kind EventKind, p Phase) {
	ev := Event{
		Kind:  kind,
		Phase: p,
		State: c.state,
		Clock: c.hw.Clock.Now(),
	}
	RecordEvent(ev)
	DebugPrintln(ev.String())
	if c.sink != nil {
		c.sink.HandleEvent(ev)
	}
}
