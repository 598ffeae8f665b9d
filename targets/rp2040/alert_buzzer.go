//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/buzzer"
)

// buzzerAlert drives an active buzzer through the tinygo drivers package
type buzzerAlert struct {
	dev buzzer.Device
}

func newBuzzerAlert(pin machine.Pin) *buzzerAlert {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	a := &buzzerAlert{dev: buzzer.New(pin)}
	a.dev.Off()
	return a
}

func (a *buzzerAlert) SetAlert(on bool) error {
	if on {
		return a.dev.On()
	}
	return a.dev.Off()
}
