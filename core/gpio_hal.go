package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state.
	// For outputs this is the level currently being driven.
	GetPin(pin GPIOPin) (bool, error)
}

// PinMap binds the logical signal roles to physical pins.
// It is filled in once by the target before the controller starts.
type PinMap struct {
	VehicleGreen      GPIOPin
	VehicleYellow     GPIOPin
	VehicleRed        GPIOPin
	PedestrianWalk    GPIOPin
	PedestrianRequest GPIOPin // active-low push button
}

// DefaultPinMap returns the reference Pico wiring
func DefaultPinMap() PinMap {
	return PinMap{
		VehicleGreen:      13,
		VehicleYellow:     14,
		VehicleRed:        15,
		PedestrianWalk:    12,
		PedestrianRequest: 10,
	}
}

// DefaultAlertPin is the buzzer pin of the reference wiring
const DefaultAlertPin GPIOPin = 21

// outputPin returns the pin driving p
func (m *PinMap) outputPin(p Phase) GPIOPin {
	switch p {
	case VehicleGreen:
		return m.VehicleGreen
	case VehicleYellow:
		return m.VehicleYellow
	case VehicleRed:
		return m.VehicleRed
	default:
		return m.PedestrianWalk
	}
}
