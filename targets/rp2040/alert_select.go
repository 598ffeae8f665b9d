//go:build rp2040 || rp2350

package main

import (
	"machine"

	"crosswalk/core"
	"crosswalk/targets/pio"
)

// alertMode selects how the walk alert makes noise. Set at link time:
//
//	tinygo build -target=pico -ldflags="-X main.alertMode=tone" ./targets/rp2040
//
// digital: active buzzer on a plain GPIO (default)
// buzzer:  active buzzer through tinygo.org/x/drivers/buzzer
// tone:    passive piezo on a hardware PWM square wave
// pio:     passive piezo driven by a PIO state machine
var alertMode = "digital"

const alertToneHz = 2000

// newAlert builds the alert driver selected by alertMode. Unknown modes
// fall back to digital so the board always boots with an alert.
func newAlert(gpio core.GPIODriver, pin core.GPIOPin) (core.AlertDriver, error) {
	switch alertMode {
	case "buzzer":
		return newBuzzerAlert(machine.Pin(pin)), nil
	case "tone":
		return core.NewToneAlert(NewRP2040PWMDriver(), core.PWMPin(pin),
			1000000/alertToneHz, core.DefaultToneDutyPct)
	case "pio":
		return pio.NewToneAlert(machine.Pin(pin), alertToneHz)
	case "digital":
	default:
		core.Diagnostic("alert: unknown mode " + alertMode + ", using digital")
	}
	return core.NewDigitalAlert(gpio, pin)
}
