//go:build rp2040 || rp2350

package main

// Lamp Check - bench firmware for a freshly wired board.
// Lights each lamp in turn, then sweeps the PIO tone through a few
// frequencies so the piezo can be checked by ear. The request button
// is echoed on the onboard LED throughout.

import (
	"machine"
	"time"

	"crosswalk/core"
	piotone "crosswalk/targets/pio"
)

var toneTests = []struct {
	freqHz uint32
	name   string
}{
	{1000, "1 kHz"},
	{2000, "2 kHz (default)"},
	{4000, "4 kHz"},
}

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Flash LED to indicate start
	for i := 0; i < 3; i++ {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}

	pins := core.DefaultPinMap()
	println("=== Lamp Check ===")
	println("Green: GP", pins.VehicleGreen, " Yellow: GP", pins.VehicleYellow,
		" Red: GP", pins.VehicleRed, " Walk: GP", pins.PedestrianWalk)
	println("Request: GP", pins.PedestrianRequest, " Alert: GP", core.DefaultAlertPin)

	lamps := []struct {
		pin  machine.Pin
		name string
	}{
		{machine.Pin(pins.VehicleGreen), "green"},
		{machine.Pin(pins.VehicleYellow), "yellow"},
		{machine.Pin(pins.VehicleRed), "red"},
		{machine.Pin(pins.PedestrianWalk), "walk"},
	}
	for _, l := range lamps {
		l.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		l.pin.Low()
	}

	button := machine.Pin(pins.PedestrianRequest)
	button.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	tone, err := piotone.NewToneAlert(machine.Pin(core.DefaultAlertPin), toneTests[0].freqHz)
	if err != nil {
		println("Tone init error:", err.Error())
		for {
			led.High()
			time.Sleep(100 * time.Millisecond)
			led.Low()
			time.Sleep(100 * time.Millisecond)
		}
	}
	println("Init OK!")

	cycle := 0
	for {
		cycle++
		println("\n=== Cycle", cycle, "===")

		for _, l := range lamps {
			println("Lamp:", l.name)
			l.pin.High()
			hold(button, led, 2*time.Second)
			l.pin.Low()
		}

		for _, test := range toneTests {
			tone.SetFrequency(test.freqHz)
			println("Tone:", test.name)
			tone.SetAlert(true)
			hold(button, led, 2*time.Second)
			tone.SetAlert(false)
			time.Sleep(500 * time.Millisecond)
		}

		println("\n--- Restarting cycle ---")
		time.Sleep(1 * time.Second)
	}
}

// hold waits d while mirroring the active-low button on the LED
func hold(button, led machine.Pin, d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
		led.Set(!button.Get())
		time.Sleep(10 * time.Millisecond)
	}
}
