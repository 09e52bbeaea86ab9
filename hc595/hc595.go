// Package hc595 drives one or more daisy-chained 74HC595 serial-in/parallel-out
// shift registers through three or four GPIO lines.
//
// The chips offer no way to read back their contents. The Driver therefore
// keeps a ShadowRegister that is advanced in lockstep with every bit shifted
// into the chain. State() returns it, oldest bit first: the last bit of the
// state sits in the first stage of the first chip (output Q0).
//
// A Driver is not safe for concurrent use.
package hc595

import (
	"github.com/antongulenko/shiftreg/gpio"
	log "github.com/sirupsen/logrus"
)

type Driver struct {
	pins  gpio.Pins
	cfg   Config
	state *ShadowRegister

	pwm  gpio.Pwm
	duty int
}

// New validates the configuration, configures the control lines as outputs
// and clears the chain.
func New(pins gpio.Pins, cfg Config) (*Driver, error) {
	if err := cfg.Validate(pins.PinRange()); err != nil {
		return nil, err
	}
	d := &Driver{
		pins:  pins,
		cfg:   cfg,
		state: NewShadowRegister(cfg.Capacity()),
	}
	if err := d.setupBoard(); err != nil {
		return nil, err
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	log.Printf("Initialized %v chained 74HC595 (%v outputs)", cfg.ChainDepth, cfg.Capacity())
	return d, nil
}

func (d *Driver) setupBoard() error {
	log.Debugf("Configuring 74HC595 control pins: DS %v, SH_CP %v, ST_CP %v, OE %v",
		d.cfg.DataPin, d.cfg.ShiftClockPin, d.cfg.LatchClockPin, d.cfg.OutputEnablePin)
	pins := []int{d.cfg.DataPin, d.cfg.LatchClockPin, d.cfg.ShiftClockPin}
	if d.cfg.OutputEnablePin != NoPin {
		// OE is active low: driving it low enables the outputs
		pins = append(pins, d.cfg.OutputEnablePin)
	}
	for _, pin := range pins {
		if err := d.pins.SetOutput(pin); err != nil {
			return err
		}
		if err := d.pins.Set(pin, gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) Config() Config {
	return d.cfg
}

// The pin setters only replace the configured pin. The new pin is not
// configured as output, that is left to the caller.

func (d *Driver) SetDataPin(pin int) error {
	if err := checkPin(d.pins.PinRange(), "data", pin); err != nil {
		return err
	}
	d.cfg.DataPin = pin
	return nil
}

func (d *Driver) SetShiftClockPin(pin int) error {
	if err := checkPin(d.pins.PinRange(), "shift clock", pin); err != nil {
		return err
	}
	d.cfg.ShiftClockPin = pin
	return nil
}

func (d *Driver) SetLatchClockPin(pin int) error {
	if err := checkPin(d.pins.PinRange(), "latch clock", pin); err != nil {
		return err
	}
	d.cfg.LatchClockPin = pin
	return nil
}

// SetOutputEnablePin also stops a PWM signal running on the previous pin.
// The next SetOutputDutyCycle starts the signal on the new pin.
func (d *Driver) SetOutputEnablePin(pin int) error {
	if pin != NoPin {
		if err := checkPin(d.pins.PinRange(), "output enable", pin); err != nil {
			return err
		}
	}
	err := d.stopPwm()
	d.cfg.OutputEnablePin = pin
	return err
}

// SetChainDepth resets the shadow state to all zeros of the new capacity
// without touching the pins. Call Clear() to bring the chips in line.
func (d *Driver) SetChainDepth(depth int) error {
	if err := checkChainDepth(depth); err != nil {
		return err
	}
	d.cfg.ChainDepth = depth
	d.state = NewShadowRegister(d.cfg.Capacity())
	log.Debugf("Chain depth set to %v (%v outputs)", depth, d.cfg.Capacity())
	return nil
}

// SetPwmFrequency restarts a running output enable signal with the new frequency.
func (d *Driver) SetPwmFrequency(frequency int) error {
	if err := checkPwmFrequency(frequency); err != nil {
		return err
	}
	d.cfg.PwmFrequency = frequency
	if d.pwm == nil {
		return nil
	}
	if err := d.stopPwm(); err != nil {
		return err
	}
	return d.SetOutputDutyCycle(d.duty)
}

// SetBits shifts in a list of 0/1 values, first value first.
func (d *Driver) SetBits(values ...int) error {
	bits, err := EncodeBits(values)
	if err != nil {
		return err
	}
	return d.Shift(bits)
}

func (d *Driver) SetBools(values ...bool) error {
	return d.Shift(EncodeBools(values))
}

// SetInt shifts in the binary representation of value, most significant bit first.
func (d *Driver) SetInt(value int) error {
	bits, err := EncodeInt(value)
	if err != nil {
		return err
	}
	return d.Shift(bits)
}

func (d *Driver) SetBool(value bool) error {
	return d.Shift(EncodeBool(value))
}

// SetOutputs replaces the contents of the whole chain so that Output(i)
// returns outputs[i]. Missing trailing outputs are switched off.
func (d *Driver) SetOutputs(outputs []bool) error {
	capacity := d.cfg.Capacity()
	if len(outputs) > capacity {
		return argumentErrorf("%v outputs given, but the chain only has %v", len(outputs), capacity)
	}
	bits := make(Bits, capacity)
	for i, on := range outputs {
		if on {
			bits[capacity-1-i] = 1
		}
	}
	return d.Shift(bits)
}

// Shift clocks the bits into the chain and latches them to the outputs.
// An empty sequence only pulses the latch clock. If a pin write fails, the
// shadow state keeps the bits advanced so far. Values other than 0 and 1 are
// rejected before any pin is written.
func (d *Driver) Shift(bits Bits) error {
	for i, bit := range bits {
		if bit > 1 {
			return argumentErrorf("bit %v must be 0 or 1 (got %v)", i, bit)
		}
	}
	log.Debugf("Shifting %v bit(s) into %v chained 74HC595: %v", len(bits), d.cfg.ChainDepth, bits)
	for _, bit := range bits {
		if err := d.pins.Set(d.cfg.DataPin, gpio.Level(bit == 1)); err != nil {
			return err
		}
		d.state.Advance(bit)
		if err := d.pulse(d.cfg.ShiftClockPin); err != nil {
			return err
		}
	}
	return d.pulse(d.cfg.LatchClockPin)
}

func (d *Driver) pulse(pin int) error {
	if err := d.pins.Set(pin, gpio.High); err != nil {
		return err
	}
	return d.pins.Set(pin, gpio.Low)
}

// State returns a copy of the shadow register, 8 * chain depth bits.
func (d *Driver) State() Bits {
	return d.state.Bits()
}

// Output returns the level of one parallel output. Output 0 is Q0 of the first
// chip in the chain, output 8 is Q0 of the second chip.
func (d *Driver) Output(i int) (bool, error) {
	n := d.state.Len()
	if i < 0 || i >= n {
		return false, argumentErrorf("output %v must be within 0..%v", i, n-1)
	}
	return d.state.Bit(n-1-i) == 1, nil
}

// Clear switches all outputs off.
func (d *Driver) Clear() error {
	return d.Shift(make(Bits, d.cfg.Capacity()))
}

// SetOutputDutyCycle drives the output enable line with a PWM signal of the
// given duty cycle (0..100). The first call starts the signal at duty cycle 0
// before switching to the requested value.
// Note that OE is active low: a higher duty cycle dims the outputs.
func (d *Driver) SetOutputDutyCycle(percent int) error {
	if percent < 0 || percent > 100 {
		return argumentErrorf("duty cycle must be within 0..100 (got %v)", percent)
	}
	if d.cfg.OutputEnablePin == NoPin {
		return ErrNoOutputEnable
	}
	if d.pwm == nil {
		pwm, err := d.pins.StartPwm(d.cfg.OutputEnablePin, d.cfg.pwmFrequency())
		if err != nil {
			return err
		}
		if err := pwm.SetDutyCycle(0); err != nil {
			_ = pwm.Stop()
			return err
		}
		log.Debugf("Started %v Hz PWM on output enable pin %v", d.cfg.pwmFrequency(), d.cfg.OutputEnablePin)
		d.pwm = pwm
		d.duty = 0
	}
	if err := d.pwm.SetDutyCycle(percent); err != nil {
		return err
	}
	d.duty = percent
	return nil
}

func (d *Driver) stopPwm() error {
	if d.pwm == nil {
		return nil
	}
	err := d.pwm.Stop()
	d.pwm = nil
	return err
}

// Close stops the output enable PWM signal, leaving the outputs enabled.
// The chain keeps its contents.
func (d *Driver) Close() error {
	return d.stopPwm()
}
