package main

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"crosswalk/core"
)

// PeriphGPIODriver implements core.GPIODriver on Linux GPIO through periph.io
type PeriphGPIODriver struct {
	lookup func(name string) gpio.PinIO

	// Pins resolved by Configure*, keyed by BCM number
	configuredPins map[core.GPIOPin]gpio.PinIO
	outputs        map[core.GPIOPin]bool
}

// NewPeriphGPIODriver creates a driver resolving pins through gpioreg.
// host.Init must have been called.
func NewPeriphGPIODriver() *PeriphGPIODriver {
	return newPeriphGPIODriver(gpioreg.ByName)
}

func newPeriphGPIODriver(lookup func(string) gpio.PinIO) *PeriphGPIODriver {
	return &PeriphGPIODriver{
		lookup:         lookup,
		configuredPins: make(map[core.GPIOPin]gpio.PinIO),
		outputs:        make(map[core.GPIOPin]bool),
	}
}

func (d *PeriphGPIODriver) resolve(pin core.GPIOPin) (gpio.PinIO, error) {
	p := d.lookup("GPIO" + strconv.Itoa(int(pin)))
	if p == nil {
		return nil, fmt.Errorf("gpio%d: no such pin", pin)
	}
	return p, nil
}

// ConfigureOutput configures a pin as a digital output, driven low
func (d *PeriphGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := d.resolve(pin)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio%d: %w", pin, err)
	}
	d.configuredPins[pin] = p
	d.outputs[pin] = true
	return nil
}

// ConfigureInputPullUp configures a pin as an input with the SoC pull-up
func (d *PeriphGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := d.resolve(pin)
	if err != nil {
		return err
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("gpio%d: %w", pin, err)
	}
	d.configuredPins[pin] = p
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *PeriphGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	if !d.outputs[pin] {
		return fmt.Errorf("gpio%d: not configured as output", pin)
	}
	return d.configuredPins[pin].Out(gpio.Level(value))
}

// GetPin reads the pin level. Outputs read back the driven level.
func (d *PeriphGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, ok := d.configuredPins[pin]
	if !ok {
		return false, fmt.Errorf("gpio%d: not configured", pin)
	}
	return bool(p.Read()), nil
}

// Release drives every configured output low
func (d *PeriphGPIODriver) Release() error {
	var firstErr error
	for pin := range d.outputs {
		if err := d.configuredPins[pin].Out(gpio.Low); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("gpio%d: %w", pin, err)
		}
	}
	return firstErr
}
