package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"crosswalk/core"
	"crosswalk/host/config"
	"crosswalk/host/sim"
)

var (
	configPath = flag.String("config", "", "JSON wiring configuration with simulator speed and button hold time")
	speed      = flag.Uint("speed", 0, "Run the controller this many times faster than real time (overrides config)")
	hold       = flag.Uint("hold", 0, "How long Enter holds the request button, in simulated ms (overrides config)")
	press      = flag.Bool("press", false, "Hold the request button from power-up")
	telemetry  = flag.String("telemetry", "", "Write the binary telemetry stream to this file")
	trace      = flag.Bool("trace", false, "Print controller trace output")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *speed != 0 {
		cfg.Speed = uint32(*speed)
	}
	if *hold != 0 {
		cfg.HoldMS = uint32(*hold)
	}
	pins, _, err := cfg.Pins()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Crosswalk Simulator")
	fmt.Println("===================")
	fmt.Printf("Speed x%d. Press Enter to request a crossing, Ctrl-C to quit.\n\n", cfg.Speed)

	core.SetDebugWriter(func(s string) {
		fmt.Println("  | " + s)
	})
	core.SetDebugEnabled(*trace)

	board := sim.NewBoard(pins)
	clock := sim.NewScaledClock(cfg.Speed)

	board.OnChange(func(l sim.Lamps) {
		fmt.Printf("[%8.1fs] %s\n", float64(clock.Now())/1000, l)
	})
	clock.OnSleep(board.Settle)

	ctrl := core.NewController(core.Hardware{
		GPIO:  board,
		Alert: board,
		Clock: clock,
		Pins:  pins,
	})

	if *telemetry != "" {
		f, err := os.Create(*telemetry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		ctrl.SetEventSink(core.NewTelemetry(f))
	}

	if err := ctrl.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init failed: %v\n", err)
		os.Exit(1)
	}

	if *press {
		board.Press()
		time.AfterFunc(clock.Real(cfg.HoldMS), board.Release)
	}

	// Enter presses the button for -hold simulated ms
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fmt.Printf("[%8.1fs] button pressed\n", float64(clock.Now())/1000)
			board.Press()
			time.AfterFunc(clock.Real(cfg.HoldMS), board.Release)
		}
	}()

	stop := make(chan struct{})
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nStopping at the next checkpoint...")
		close(stop)
	}()

	ctrl.Run(stop)

	if err := ctrl.Signals().AllOff(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not switch outputs off: %v\n", err)
	}
	board.Settle()

	fmt.Println()
	core.DumpEvents()
}
