// Package config loads the wiring of a host-run controller (simulator or
// Raspberry Pi) from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crosswalk/core"
)

// WiringConfig names the pin behind each signal role, e.g. "gpio13"
type WiringConfig struct {
	VehicleGreen      string `json:"vehicle_green"`
	VehicleYellow     string `json:"vehicle_yellow"`
	VehicleRed        string `json:"vehicle_red"`
	PedestrianWalk    string `json:"pedestrian_walk"`
	PedestrianRequest string `json:"pedestrian_request"`
	Alert             string `json:"alert"`
}

// Config is a complete host controller configuration
type Config struct {
	Wiring WiringConfig `json:"wiring"`

	// Simulator only
	Speed  uint32 `json:"speed"`   // Time multiplier
	HoldMS uint32 `json:"hold_ms"` // How long a key press holds the button
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if _, _, err := cfg.Pins(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses a configuration file. An empty path yields
// the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the reference Pico wiring
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Pins resolves the wiring to a core.PinMap and the alert pin
func (c *Config) Pins() (core.PinMap, core.GPIOPin, error) {
	var pins core.PinMap
	fields := []struct {
		role string
		name string
		dst  *core.GPIOPin
	}{
		{"vehicle_green", c.Wiring.VehicleGreen, &pins.VehicleGreen},
		{"vehicle_yellow", c.Wiring.VehicleYellow, &pins.VehicleYellow},
		{"vehicle_red", c.Wiring.VehicleRed, &pins.VehicleRed},
		{"pedestrian_walk", c.Wiring.PedestrianWalk, &pins.PedestrianWalk},
		{"pedestrian_request", c.Wiring.PedestrianRequest, &pins.PedestrianRequest},
	}

	used := make(map[core.GPIOPin]string)
	for _, f := range fields {
		pin, err := ParsePin(f.name)
		if err != nil {
			return core.PinMap{}, 0, fmt.Errorf("%s: %w", f.role, err)
		}
		if other, dup := used[pin]; dup {
			return core.PinMap{}, 0, fmt.Errorf("%s: gpio%d already used by %s", f.role, pin, other)
		}
		used[pin] = f.role
		*f.dst = pin
	}

	alert, err := ParsePin(c.Wiring.Alert)
	if err != nil {
		return core.PinMap{}, 0, fmt.Errorf("alert: %w", err)
	}
	if other, dup := used[alert]; dup {
		return core.PinMap{}, 0, fmt.Errorf("alert: gpio%d already used by %s", alert, other)
	}
	return pins, alert, nil
}

// ParsePin parses a pin name of the form "gpioN" (case-insensitive)
func ParsePin(name string) (core.GPIOPin, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(lower, "gpio") {
		return 0, fmt.Errorf("invalid pin name %q", name)
	}
	n, err := strconv.ParseUint(lower[len("gpio"):], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid pin name %q", name)
	}
	return core.GPIOPin(n), nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	def := core.DefaultPinMap()
	w := &cfg.Wiring
	setDefault(&w.VehicleGreen, def.VehicleGreen)
	setDefault(&w.VehicleYellow, def.VehicleYellow)
	setDefault(&w.VehicleRed, def.VehicleRed)
	setDefault(&w.PedestrianWalk, def.PedestrianWalk)
	setDefault(&w.PedestrianRequest, def.PedestrianRequest)
	setDefault(&w.Alert, core.DefaultAlertPin)

	if cfg.Speed == 0 {
		cfg.Speed = 10
	}
	if cfg.HoldMS == 0 {
		cfg.HoldMS = 1500
	}
}

func setDefault(name *string, pin core.GPIOPin) {
	if *name == "" {
		*name = "gpio" + strconv.Itoa(int(pin))
	}
}
