//go:build rp2040 || rp2350

package main

import (
	"machine"
)

var (
	debugUART  *machine.UART
	uartActive bool
)

// InitDebugUART initializes UART1 on GPIO4 (TX) and GPIO5 (RX) for
// trace and diagnostic output. USB carries telemetry only.
// Baud rate: 115200
func InitDebugUART() {
	debugUART = machine.UART1

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO4,
		RX:       machine.GPIO5,
	})
	if err != nil {
		uartActive = false
		return
	}

	uartActive = true

	debugWrite("=== Crosswalk Debug UART Initialized ===")
	debugWrite("Baud: 115200, TX=GPIO4, RX=GPIO5")
}

// debugWrite writes a line to the debug UART. Used as core's DebugWriter.
func debugWrite(s string) {
	if !uartActive || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
