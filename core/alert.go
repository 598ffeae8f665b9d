package core

// AlertDriver drives the audible crossing alert.
// The controller only needs on/off; how the sound is produced is up to the driver.
type AlertDriver interface {
	SetAlert(on bool) error
}

// DigitalAlert drives a self-oscillating buzzer from a plain GPIO output
type DigitalAlert struct {
	gpio GPIODriver
	pin  GPIOPin
}

// NewDigitalAlert configures pin as an output and returns an alert driving it
func NewDigitalAlert(gpio GPIODriver, pin GPIOPin) (*DigitalAlert, error) {
	if err := gpio.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	return &DigitalAlert{gpio: gpio, pin: pin}, nil
}

func (a *DigitalAlert) SetAlert(on bool) error {
	return a.gpio.SetPin(a.pin, on)
}

// ToneAlert drives a passive piezo with a hardware PWM square wave
type ToneAlert struct {
	pwm  PWMDriver
	pin  PWMPin
	duty PWMValue
}

// Tone defaults: 2 kHz at 50% duty
const (
	DefaultTonePeriodUS = 500
	DefaultToneDutyPct  = 50
)

// NewToneAlert configures pin for PWM at the given period and duty (percent).
// The output stays silent until SetAlert(true).
func NewToneAlert(pwm PWMDriver, pin PWMPin, periodUS uint32, dutyPct uint32) (*ToneAlert, error) {
	if _, err := pwm.ConfigureHardwarePWM(pin, periodUS); err != nil {
		return nil, err
	}
	if dutyPct > 100 {
		dutyPct = 100
	}
	a := &ToneAlert{
		pwm:  pwm,
		pin:  pin,
		duty: PWMValue(pwm.GetMaxValue() * dutyPct / 100),
	}
	if err := pwm.SetDutyCycle(pin, 0); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ToneAlert) SetAlert(on bool) error {
	if on {
		return a.pwm.SetDutyCycle(a.pin, a.duty)
	}
	return a.pwm.SetDutyCycle(a.pin, 0)
}

// Close silences the tone and releases the PWM channel
func (a *ToneAlert) Close() error {
	if err := a.pwm.SetDutyCycle(a.pin, 0); err != nil {
		return err
	}
	return a.pwm.DisablePWM(a.pin)
}
