// Package pca9685 uses the 16 channels of a PCA9685 PWM controller as GPIO
// outputs. PWM signals are generated by the chip, all channels share one
// frequency.
package pca9685

import (
	"fmt"
	"math"
	"sync"

	"github.com/antongulenko/shiftreg/ft260"
	"github.com/antongulenko/shiftreg/gpio"
	log "github.com/sirupsen/logrus"
)

const (
	MODE1     = byte(0x00)
	MODE2     = byte(0x01)
	LED0      = byte(0x06) // LED0_ON_L, followed by ON_H, OFF_L, OFF_H and the registers of LED1..LED15
	ALL_LEDS  = byte(0xFA)
	PRE_SCALE = byte(0xFE) // Only settable in SLEEP mode. Default value: 0x1E
)

// Default values all zero, except ALLCALL and SLEEP
const (
	MODE1_ALLCALL = byte(1 << iota) // 1: Respond to ALLCALL address
	MODE1_SUB3                      // 1: Respond to SUB3 address
	MODE1_SUB2                      // 1: Respond to SUB2 address
	MODE1_SUB1                      // 1: Respond to SUB1 address
	MODE1_SLEEP                     // 0: normal mode 1: oscillator off, low power mode
	MODE1_AI                        // 1: Register auto increment
	MODE1_EXTCLK                    // 1: use EXTCLK pin as clock source
	MODE1_RESTART                   // Write 1: wake up from SLEEP
)

const (
	MODE2_OUTNE0 = byte(1 << iota) // (only for OUTNE1=0) 0: leds off 1: [leds on if OUTDRV=1, high-impedance if OUTDRV=0]
	MODE2_OUTNE1                   // 1: high impedance 0: see OUTNE0
	MODE2_OUTDRV                   // 0: outputs are open drain 1: outputs are totem pole
	MODE2_OCH                      // 0: output change on STOP 1: output change on ACK
	MODE2_INVRT                    // 1: invert output logic
)

const (
	ADDRESS     = byte(0x40) // 0100 0000
	MAX_ADDRESS = byte(0x7F) // 0111 1111

	NumChannels      = 16
	BYTE_PER_OUTPUT  = 4
	TIMER_RESOLUTION = 4096

	FULL_ON_BIT  = 0x10 // bit 4 of LEDn_ON_H
	FULL_OFF_BIT = 0x10 // bit 4 of LEDn_OFF_H, takes precedence over FULL_ON_BIT

	FREQ_MIN = 23.84185791
	FREQ_MAX = 1525.87890625

	INTERNAL_OSCILLATOR = 25000000 // 25 MHz
)

var PinRange = gpio.PinRange{Min: 0, Max: NumChannels - 1}

// TimerValues returns the four LEDn register values for a signal that turns
// on after delay and stays on for onTime, both as fractions of one period.
func TimerValues(delay, onTime float64) ([BYTE_PER_OUTPUT]byte, error) {
	if delay < 0 || delay > 1 || onTime < 0 || onTime > 1 {
		return [BYTE_PER_OUTPUT]byte{}, fmt.Errorf("Invalid PCA9685 timer values delay=%v onTime=%v", delay, onTime)
	}
	on := int(math.Round(delay*TIMER_RESOLUTION - 1))
	count := int(math.Round(onTime * TIMER_RESOLUTION))
	if delay == 0 {
		// The -1 correction moves from the delay to the on count
		on = 0
		if count > 0 {
			count--
		}
	}
	off := on + count
	if off > TIMER_RESOLUTION {
		off -= TIMER_RESOLUTION
	}
	return [BYTE_PER_OUTPUT]byte{byte(on), byte(on >> 8), byte(off), byte(off >> 8)}, nil
}

func FullValues(on bool) [BYTE_PER_OUTPUT]byte {
	if on {
		return [BYTE_PER_OUTPUT]byte{0, FULL_ON_BIT, 0, 0}
	}
	return [BYTE_PER_OUTPUT]byte{0, 0, 0, FULL_OFF_BIT}
}

// Prescaler returns the PRE_SCALE value for the frequency, using the internal oscillator.
func Prescaler(frequency float64) byte {
	return byte(int(math.Round(INTERNAL_OSCILLATOR/(TIMER_RESOLUTION*frequency))) - 1)
}

// Controller implements gpio.Pins. Every channel is always an output.
type Controller struct {
	bus  ft260.I2cBus
	addr byte

	lock      sync.Mutex
	frequency int
}

func New(bus ft260.I2cBus, addr byte) (*Controller, error) {
	if addr < ADDRESS || addr > MAX_ADDRESS {
		return nil, fmt.Errorf("PCA9685 address %#02x outside of %#02x..%#02x", addr, ADDRESS, MAX_ADDRESS)
	}
	c := &Controller{bus: bus, addr: addr}
	log.Printf("Initializing PCA9685 PWM controller at %#02x...", addr)
	if err := bus.I2cWrite(addr, MODE1, MODE1_ALLCALL|MODE1_AI, MODE2_OUTDRV); err != nil {
		return nil, err
	}
	if err := c.writeChannel(ALL_LEDS, FullValues(false)); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) PinRange() gpio.PinRange {
	return PinRange
}

func (c *Controller) SetOutput(pin int) error {
	return PinRange.Check(pin)
}

func (c *Controller) Set(pin int, level gpio.Level) error {
	if err := PinRange.Check(pin); err != nil {
		return err
	}
	return c.writeChannel(channelRegister(pin), FullValues(bool(level)))
}

// StartPwm changes the frequency shared by all channels if necessary.
func (c *Controller) StartPwm(pin int, frequency int) (gpio.Pwm, error) {
	if err := PinRange.Check(pin); err != nil {
		return nil, err
	}
	if float64(frequency) < FREQ_MIN || float64(frequency) > FREQ_MAX {
		return nil, fmt.Errorf("PCA9685 PWM frequency must be within %.2f..%.2f Hz (got %v)", FREQ_MIN, FREQ_MAX, frequency)
	}
	if err := c.setFrequency(frequency); err != nil {
		return nil, err
	}
	return &channelPwm{controller: c, pin: pin}, nil
}

func (c *Controller) setFrequency(frequency int) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.frequency == frequency {
		return nil
	}
	log.Debugf("Setting PCA9685 PWM frequency to %v Hz", frequency)
	writes := [][]byte{
		{MODE1, MODE1_ALLCALL | MODE1_AI | MODE1_SLEEP},
		{PRE_SCALE, Prescaler(float64(frequency))},
		{MODE1, MODE1_ALLCALL | MODE1_AI | MODE1_RESTART},
	}
	for _, data := range writes {
		if err := c.bus.I2cWrite(c.addr, data...); err != nil {
			return err
		}
	}
	c.frequency = frequency
	return nil
}

func (c *Controller) writeChannel(register byte, values [BYTE_PER_OUTPUT]byte) error {
	return c.bus.I2cWrite(c.addr, register, values[0], values[1], values[2], values[3])
}

func channelRegister(pin int) byte {
	return LED0 + byte(pin*BYTE_PER_OUTPUT)
}

type channelPwm struct {
	controller *Controller
	pin        int
}

func (p *channelPwm) SetDutyCycle(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("Duty cycle must be within 0..100 (got %v)", percent)
	}
	var values [BYTE_PER_OUTPUT]byte
	switch percent {
	case 0:
		values = FullValues(false)
	case 100:
		values = FullValues(true)
	default:
		var err error
		if values, err = TimerValues(0, float64(percent)/100); err != nil {
			return err
		}
	}
	return p.controller.writeChannel(channelRegister(p.pin), values)
}

func (p *channelPwm) Stop() error {
	return p.controller.Set(p.pin, gpio.Low)
}
