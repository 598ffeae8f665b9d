// Command crosswalk-rpi runs the crossing controller on a Raspberry Pi,
// driving the lamps from the header GPIOs.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/host/v3"
	"periph.io/x/host/v3/rpi"

	"crosswalk/core"
	"crosswalk/host/config"
)

var (
	configPath = flag.String("config", "", "JSON wiring configuration (BCM numbering)")
	telemetry  = flag.String("telemetry", "", "Write the binary telemetry stream to this file or FIFO")
	trace      = flag.Bool("trace", false, "Print controller trace output")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pins, alertPin, err := cfg.Pins()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := host.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: periph init: %v\n", err)
		os.Exit(1)
	}
	if !rpi.Present() {
		fmt.Fprintln(os.Stderr, "Warning: not running on a Raspberry Pi, pin names may differ")
	}

	core.SetDebugWriter(func(s string) {
		fmt.Fprintln(os.Stderr, s)
	})
	core.SetDebugEnabled(*trace)

	gpioDriver := NewPeriphGPIODriver()
	alert, err := core.NewDigitalAlert(gpioDriver, alertPin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: alert: %v\n", err)
		os.Exit(1)
	}

	ctrl := core.NewController(core.Hardware{
		GPIO:  gpioDriver,
		Alert: alert,
		Clock: core.NewSystemClock(),
		Pins:  pins,
	})

	if *telemetry != "" {
		f, err := os.OpenFile(*telemetry, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		ctrl.SetEventSink(core.NewTelemetry(f))
	}

	if err := ctrl.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init failed: %v\n", err)
		if err := gpioDriver.Release(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		os.Exit(1)
	}

	stop := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		close(stop)
	}()

	fmt.Printf("Crosswalk running: green=gpio%d yellow=gpio%d red=gpio%d walk=gpio%d request=gpio%d alert=gpio%d\n",
		pins.VehicleGreen, pins.VehicleYellow, pins.VehicleRed, pins.PedestrianWalk, pins.PedestrianRequest, alertPin)

	ctrl.Run(stop)

	// Leave the intersection dark rather than frozen on one aspect
	if err := ctrl.Signals().AllOff(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := gpioDriver.Release(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	core.DumpEvents()
}
