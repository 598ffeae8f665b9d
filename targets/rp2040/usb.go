//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
)

var errUSBDisconnected = errors.New("usb: host not reading")

// usbWriter carries the telemetry stream over USB CDC.
// TinyGo sets up the CDC-ACM descriptors; machine.Serial is the endpoint.
type usbWriter struct {
	consecutiveFailures uint32
	disconnected        bool
}

// Give up on a frame after this many failed writes in a row and stop
// trying until the next frame, so an absent host cannot stall the lamps
const maxUSBWriteFailures = 3

// InitUSB configures the USB serial endpoint
func InitUSB() *usbWriter {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return nil
	}
	return &usbWriter{}
}

// Write sends a whole telemetry frame or reports it lost
func (w *usbWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := machine.Serial.Write(p[written:])
		written += n
		if err != nil || n == 0 {
			w.consecutiveFailures++
			if w.consecutiveFailures >= maxUSBWriteFailures {
				if !w.disconnected {
					w.disconnected = true
					debugWrite("usb: host stopped reading, dropping telemetry")
				}
				return written, errUSBDisconnected
			}
			continue
		}
		w.consecutiveFailures = 0
	}

	if w.disconnected {
		w.disconnected = false
		debugWrite("usb: host reading again")
	}
	return written, nil
}
