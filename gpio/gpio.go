// Package gpio defines the output-line capability consumed by the chip drivers
// of this module, together with a number of backends implementing it.
package gpio

import "fmt"

type Level bool

const (
	Low  = Level(false)
	High = Level(true)
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Pins drives a set of numbered output lines. The meaning of a pin number is
// defined by the backend, PinRange returns the numbers it accepts.
type Pins interface {
	SetOutput(pin int) error
	Set(pin int, level Level) error

	// StartPwm starts a periodic signal on the pin with a duty cycle of zero.
	StartPwm(pin int, frequency int) (Pwm, error)

	PinRange() PinRange
}

type Pwm interface {
	SetDutyCycle(percent int) error // 0..100
	Stop() error
}

type PinRange struct {
	Min int
	Max int
}

// Physical pin positions of the 40-pin Raspberry Pi header
var HeaderPins = PinRange{Min: 1, Max: 40}

func (r PinRange) Contains(pin int) bool {
	return pin >= r.Min && pin <= r.Max
}

func (r PinRange) String() string {
	return fmt.Sprintf("%v..%v", r.Min, r.Max)
}

func (r PinRange) Check(pin int) error {
	if !r.Contains(pin) {
		return fmt.Errorf("Pin %v is outside of the valid pin range %v", pin, r)
	}
	return nil
}

func checkDutyCycle(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("Illegal PWM duty cycle %v (must be 0..100)", percent)
	}
	return nil
}
