package hc595

import (
	"github.com/antongulenko/shiftreg/gpio"
)

const (
	BitsPerChip = 8

	// NoPin leaves the output enable line unconnected (OE tied to ground).
	NoPin = -1

	DefaultPwmFrequency = 100
	MaxPwmFrequency     = 100
)

// DefaultConfig uses physical Raspberry Pi header positions.
var DefaultConfig = Config{
	DataPin:         11,
	LatchClockPin:   13,
	ShiftClockPin:   15,
	OutputEnablePin: 33,
	ChainDepth:      1,
	PwmFrequency:    DefaultPwmFrequency,
}

type Config struct {
	DataPin         int // DS
	ShiftClockPin   int // SH_CP
	LatchClockPin   int // ST_CP
	OutputEnablePin int // OE, or NoPin

	ChainDepth   int // Number of daisy-chained chips
	PwmFrequency int // Hz for the output enable signal, 0 selects DefaultPwmFrequency
}

func (c Config) Validate(pins gpio.PinRange) error {
	for _, pin := range []struct {
		name string
		pin  int
	}{
		{"data", c.DataPin},
		{"shift clock", c.ShiftClockPin},
		{"latch clock", c.LatchClockPin},
	} {
		if err := checkPin(pins, pin.name, pin.pin); err != nil {
			return err
		}
	}
	if c.OutputEnablePin != NoPin {
		if err := checkPin(pins, "output enable", c.OutputEnablePin); err != nil {
			return err
		}
	}
	if err := checkChainDepth(c.ChainDepth); err != nil {
		return err
	}
	return checkPwmFrequency(c.PwmFrequency)
}

// Capacity is the total number of bits held by the chain.
func (c Config) Capacity() int {
	return BitsPerChip * c.ChainDepth
}

func (c Config) pwmFrequency() int {
	if c.PwmFrequency == 0 {
		return DefaultPwmFrequency
	}
	return c.PwmFrequency
}

func checkPin(pins gpio.PinRange, role string, pin int) error {
	if !pins.Contains(pin) {
		return argumentErrorf("%v pin %v must be within pin range %v", role, pin, pins)
	}
	return nil
}

func checkChainDepth(depth int) error {
	if depth < 1 {
		return argumentErrorf("chain depth must be positive (got %v)", depth)
	}
	return nil
}

func checkPwmFrequency(frequency int) error {
	if frequency < 0 || frequency > MaxPwmFrequency {
		return argumentErrorf("PWM frequency must be within 0..%v (got %v)", MaxPwmFrequency, frequency)
	}
	return nil
}
