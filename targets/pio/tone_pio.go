//go:build rp2040 || rp2350

package pio

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Let the PIO pick a free offset
const toneOrigin = -1

var ErrNoStateMachine = errors.New("pio: no free state machine")

func buildToneProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Set(rp2pio.SetDestPins, 1).Delay(31).Encode(), // 0: set pins, 1 [31]
		asm.Set(rp2pio.SetDestPins, 0).Delay(31).Encode(), // 1: set pins, 0 [31]
		// .wrap
	}
}

// ToneAlert is a core.AlertDriver producing a fixed-frequency square wave
type ToneAlert struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	on     bool
}

// NewToneAlert loads the tone program on the first free state machine and
// leaves it stopped with the pin low
func NewToneAlert(pin machine.Pin, freqHz uint32) (*ToneAlert, error) {
	pioHW, sm, ok := claimStateMachine()
	if !ok {
		return nil, ErrNoStateMachine
	}

	program := buildToneProgram()
	offset, err := pioHW.AddProgram(program, toneOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	a := &ToneAlert{pio: pioHW, sm: sm, pin: pin, offset: offset}
	a.configure(freqHz)
	return a, nil
}

// SetFrequency retunes the tone. A sounding tone is restarted at the new pitch.
func (a *ToneAlert) SetFrequency(freqHz uint32) {
	wasOn := a.on
	a.sm.SetEnabled(false)
	a.on = false
	a.configure(freqHz)
	if wasOn {
		a.SetAlert(true)
	}
}

// configure (re)initializes the stopped state machine for freqHz
func (a *ToneAlert) configure(freqHz uint32) {
	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(a.pin, 1)
	cfg.SetWrap(a.offset+uint8(len(buildToneProgram()))-1, a.offset)
	whole, frac := ToneClockDivider(machine.CPUFrequency(), freqHz)
	cfg.SetClkDivIntFrac(whole, frac)

	// Init leaves the state machine disabled
	a.sm.Init(a.offset, cfg)
	a.sm.SetPindirsConsecutive(a.pin, 1, true)
	a.sm.SetPinsConsecutive(a.pin, 1, false)
}

// SetAlert starts or stops the tone. Stopping drives the pin low.
func (a *ToneAlert) SetAlert(on bool) error {
	if on == a.on {
		return nil
	}
	if on {
		a.sm.Restart()
		a.sm.SetEnabled(true)
	} else {
		a.sm.SetEnabled(false)
		a.sm.SetPinsConsecutive(a.pin, 1, false)
	}
	a.on = on
	return nil
}

// claimStateMachine claims the first free state machine, PIO1 first so
// PIO0 stays available for anything that assumes it
func claimStateMachine() (*rp2pio.PIO, rp2pio.StateMachine, bool) {
	for _, hw := range []*rp2pio.PIO{rp2pio.PIO1, rp2pio.PIO0} {
		for i := uint8(0); i < 4; i++ {
			sm := hw.StateMachine(i)
			if sm.TryClaim() {
				return hw, sm, true
			}
		}
	}
	return nil, rp2pio.StateMachine{}, false
}
