//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"crosswalk/core"
)

var (
	// Debug counters
	panics uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	// This prevents issues with watchdog persisting across resets
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Trace and diagnostics on UART1, async so a slow UART never stretches a phase
	InitDebugUART()
	core.SetDebugWriter(debugWrite)
	core.InitAsyncDebug()

	usb := InitUSB()

	gpioDriver := NewRPGPIODriver()
	pins := core.DefaultPinMap()

	alert, err := newAlert(gpioDriver, core.DefaultAlertPin)
	if err != nil {
		core.Diagnostic("alert: " + err.Error())
		halt()
	}

	ctrl := core.NewController(core.Hardware{
		GPIO:  gpioDriver,
		Alert: alert,
		Clock: core.NewSystemClock(),
		Pins:  pins,
	})
	if usb != nil {
		ctrl.SetEventSink(core.NewTelemetry(usb))
	}

	if err := ctrl.Init(); err != nil {
		halt()
	}

	// Main loop
	for {
		// Recover from panics in the main loop to keep the intersection running
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					core.Diagnostic("main: recovered from panic")
					core.DumpEvents()
					// Fail safe before the next cycle starts from green
					ctrl.Signals().AllOff()
				}
			}()

			ctrl.Run(nil)
		}()
	}
}

// halt parks the CPU with every output in its reset state (off).
// The event ring is dumped once for the bench.
func halt() {
	core.DumpEvents()
	for {
		time.Sleep(time.Second)
	}
}
