package ft260

import (
	"fmt"
	"sync"

	"github.com/antongulenko/shiftreg/gpio"
	log "github.com/sirupsen/logrus"
)

const (
	ReportID_GPIO = 0xB0 // Feature

	// Pins 0..5 are GPIO0..GPIO5, pins 6..13 are GPIOA..GPIOH
	NumGpioPins   = 14
	numGpioBasic  = 6
	gpioPinsBasic = byte(0x3F)
)

var GpioPinRange = gpio.PinRange{Min: 0, Max: NumGpioPins - 1}

// ReportID_GPIO Feature In and Out
type ReportGpio struct {
	Value   byte // GPIO 0-5 bits
	Dir     byte // GPIO 0-5 direction bits, 1: output
	ValueEx byte // GPIO A-H bits
	DirEx   byte // GPIO A-H direction bits, 1: output
}

func (r *ReportGpio) ReportID() byte {
	return ReportID_GPIO
}

func (r *ReportGpio) ReportLen() int {
	return 5
}

func (r *ReportGpio) Marshall(b []byte) error {
	b[1] = r.Value
	b[2] = r.Dir
	b[3] = r.ValueEx
	b[4] = r.DirEx
	return nil
}

func (r *ReportGpio) Unmarshall(b []byte) error {
	r.Value = b[1] & gpioPinsBasic
	r.Dir = b[2] & gpioPinsBasic
	r.ValueEx = b[3]
	r.DirEx = b[4]
	return nil
}

// bits returns the value and direction bytes holding the pin, and its mask
func (r *ReportGpio) bits(pin int) (value *byte, dir *byte, mask byte) {
	if pin < numGpioBasic {
		return &r.Value, &r.Dir, 1 << uint(pin)
	}
	return &r.ValueEx, &r.DirEx, 1 << uint(pin-numGpioBasic)
}

func (r *ReportGpio) SetOutput(pin int) {
	_, dir, mask := r.bits(pin)
	*dir |= mask
}

func (r *ReportGpio) IsOutput(pin int) bool {
	_, dir, mask := r.bits(pin)
	return *dir&mask != 0
}

func (r *ReportGpio) Set(pin int, level gpio.Level) {
	value, _, mask := r.bits(pin)
	if level {
		*value |= mask
	} else {
		*value &^= mask
	}
}

func (r *ReportGpio) Level(pin int) gpio.Level {
	value, _, mask := r.bits(pin)
	return *value&mask != 0
}

// GpioPins uses the GPIO lines of an FT260 as gpio.Pins. Every level change
// writes one GPIO report to the device.
type GpioPins struct {
	write func(report ReportOut) error

	lock  sync.Mutex
	state ReportGpio
}

// NewGpioPins configures all multi-function pins as GPIO and reads their current state.
func NewGpioPins(dev *Ft260) (*GpioPins, error) {
	if err := dev.ValidateChipCode(); err != nil {
		return nil, err
	}
	if err := dev.ConfigureGpio(); err != nil {
		return nil, err
	}
	pins := &GpioPins{write: dev.Write}
	if err := dev.Read(&pins.state); err != nil {
		return nil, err
	}
	log.Printf("FT260 GPIO state: value %02x dir %02x, valueEx %02x dirEx %02x",
		pins.state.Value, pins.state.Dir, pins.state.ValueEx, pins.state.DirEx)
	return pins, nil
}

func (g *GpioPins) PinRange() gpio.PinRange {
	return GpioPinRange
}

func (g *GpioPins) SetOutput(pin int) error {
	if err := GpioPinRange.Check(pin); err != nil {
		return err
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.state.IsOutput(pin) {
		return nil
	}
	g.state.SetOutput(pin)
	return g.flush()
}

func (g *GpioPins) Set(pin int, level gpio.Level) error {
	if err := GpioPinRange.Check(pin); err != nil {
		return err
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if !g.state.IsOutput(pin) {
		return fmt.Errorf("FT260 GPIO %v is not configured as output", pin)
	}
	g.state.Set(pin, level)
	return g.flush()
}

func (g *GpioPins) StartPwm(pin int, frequency int) (gpio.Pwm, error) {
	if err := g.SetOutput(pin); err != nil {
		return nil, err
	}
	return gpio.StartSoftPwm(frequency, func(level gpio.Level) error {
		return g.Set(pin, level)
	})
}

func (g *GpioPins) flush() error {
	report := g.state
	return g.write(&report)
}
