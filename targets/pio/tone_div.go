// Package pio drives the walk alert from a PIO state machine, so the tone
// keeps running without CPU involvement while the controller sleeps.
package pio

// Square wave: high for 32 cycles, low for 32 cycles
const toneCyclesPerPeriod = 64

// ToneClockDivider returns the 16.8 fixed-point divider for freqHz
func ToneClockDivider(sysHz, freqHz uint32) (uint16, uint8) {
	if freqHz == 0 {
		freqHz = 1
	}
	// div * 256 = sys * 256 / (freq * cycles)
	div256 := (uint64(sysHz) << 8) / (uint64(freqHz) * toneCyclesPerPeriod)
	if div256 < 1<<8 {
		div256 = 1 << 8
	}
	if div256 > 0xFFFF<<8 {
		div256 = 0xFFFF << 8
	}
	return uint16(div256 >> 8), uint8(div256 & 0xFF)
}
