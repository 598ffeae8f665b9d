package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"crosswalk/host/monitor"
	"crosswalk/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	capture = flag.String("file", "", "Decode a recorded telemetry capture instead of a serial device")
	verbose = flag.Bool("verbose", false, "Print every event, not just phase changes")
)

func main() {
	flag.Parse()

	fmt.Println("Crosswalk Monitor - telemetry decoder")
	fmt.Println("=====================================")

	mon := monitor.New(os.Stdout, *verbose)

	var (
		src    io.ReadCloser
		follow bool
	)
	if *capture != "" {
		f, err := os.Open(*capture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = f
	} else {
		cfg := serial.DefaultConfig(*device)
		cfg.Baud = *baud

		fmt.Printf("Connecting to controller on %s...\n", *device)
		port, err := serial.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Drop whatever accumulated before we attached
		if err := port.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
		}
		src = port
		follow = true
	}
	defer src.Close()

	done := make(chan error, 1)
	go func() {
		done <- mon.Run(src, follow)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	exitCode := 0
	select {
	case err := <-done:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read failed: %v\n", err)
			exitCode = 1
		}
	case <-interrupt:
		fmt.Println()
		// Closing the source ends Run; the summary must not race Feed
		src.Close()
		if err := <-done; err != nil {
			fmt.Fprintf(os.Stderr, "Error: read failed: %v\n", err)
			exitCode = 1
		}
	}

	mon.PrintSummary()
	if len(mon.Violations()) > 0 {
		exitCode = 2
	}
	src.Close()
	os.Exit(exitCode)
}
