package core

// Phase identifies one signal output group of the intersection
type Phase uint8

const (
	VehicleGreen Phase = iota
	VehicleYellow
	VehicleRed
	PedestrianWalk

	phaseCount
)

// Phase dwell times in milliseconds
const (
	GreenMS  = 8000  // Normal cycle green
	YellowMS = 2000  // Normal cycle yellow
	RedMS    = 10000 // Normal cycle red

	ClearanceYellowMS = 5000  // Yellow while stopping traffic for a crossing
	ClearanceRedMS    = 15000 // Red before the walk signal comes on
	WalkMS            = 15000 // Walk signal + audible alert

	DebounceMS   = 300  // Request must still be held after this long
	CheckpointMS = 1000 // Request polling granularity inside vehicle waits
)

// vehiclePhases lists the mutually exclusive vehicle outputs in cycle order
var vehiclePhases = [3]Phase{VehicleGreen, VehicleYellow, VehicleRed}

// Valid reports whether p is one of the defined phases
func (p Phase) Valid() bool {
	return p < phaseCount
}

// IsVehicle reports whether p drives one of the vehicle lamps
func (p Phase) IsVehicle() bool {
	return p == VehicleGreen || p == VehicleYellow || p == VehicleRed
}

func (p Phase) String() string {
	switch p {
	case VehicleGreen:
		return "green"
	case VehicleYellow:
		return "yellow"
	case VehicleRed:
		return "red"
	case PedestrianWalk:
		return "walk"
	default:
		return "phase(" + utoa(uint32(p)) + ")"
	}
}

// cycleStep is one entry of the normal vehicle cycle
type cycleStep struct {
	phase   Phase
	dwellMS uint32
}

// vehicleCycle is the fixed Green -> Yellow -> Red sequence
var vehicleCycle = [...]cycleStep{
	{VehicleGreen, GreenMS},
	{VehicleYellow, YellowMS},
	{VehicleRed, RedMS},
}
