// Package mcp23017 uses the 16 pins of an MCP23017 I2C port expander as
// GPIO outputs.
package mcp23017

import (
	"fmt"
	"sync"

	"github.com/antongulenko/shiftreg/ft260"
	"github.com/antongulenko/shiftreg/gpio"
	log "github.com/sirupsen/logrus"
)

// Register addresses with the BANK bit in IOCON cleared (the default): the
// registers of port A and B are paired.
const (
	IODIR_A = byte(0x00) // 0: output, 1: input
	IODIR_B = byte(0x01)
	IOCON   = byte(0x0A)
	GPIO_A  = byte(0x12) // Reading reads pin values, writing modifies OLAT
	GPIO_B  = byte(0x13)
	OLAT_A  = byte(0x14) // Output latches
	OLAT_B  = byte(0x15)
)

const (
	_                = byte(1 << iota)
	IOCON_BIT_INTPOL // 1: INT pins active-high 0: INT pins active-low
	IOCON_BIT_ODR    // (overrides INTPOL) 1: INT pins are open-drain 0: active output
	IOCON_BIT_HAEN   // Enable hardware address pins (zero otherwise)
	IOCON_BIT_DISSLW // 0: slew rate control for SDA output enabled 1: disabled
	IOCON_BIT_SEQOP  // 0: sequential operation enabled 1: disabled (address stays after read/write)
	IOCON_BIT_MIRROR // 0: INT pins not mirrored 1: INT pins mirrored
	IOCON_BIT_BANK   // 1: registers grouped in banks 0: registers paired
)

const (
	ADDRESS     = byte(0x20) // 0010 0000
	MAX_ADDRESS = byte(0x27) // 0010 0111

	// Pins 0..7 are GPA0..GPA7, pins 8..15 are GPB0..GPB7
	NumPins = 16

	allInputs = uint16(0xFFFF)
)

var PinRange = gpio.PinRange{Min: 0, Max: NumPins - 1}

// Expander implements gpio.Pins. Pin directions and output latches are
// cached, every change writes both ports in one sequential transaction.
type Expander struct {
	bus  ft260.I2cBus
	addr byte

	lock sync.Mutex
	dir  uint16 // 1: input
	olat uint16
}

// New configures the expander for sequential register access and reads
// back the current output latches. All pins start as inputs.
func New(bus ft260.I2cBus, addr byte) (*Expander, error) {
	if addr < ADDRESS || addr > MAX_ADDRESS {
		return nil, fmt.Errorf("MCP23017 address %#02x outside of %#02x..%#02x", addr, ADDRESS, MAX_ADDRESS)
	}
	e := &Expander{bus: bus, addr: addr, dir: allInputs}
	log.Printf("Initializing MCP23017 port expander at %#02x...", addr)
	if err := bus.I2cWrite(addr, IOCON, 0); err != nil {
		return nil, err
	}
	if err := e.writePair(IODIR_A, e.dir); err != nil {
		return nil, err
	}
	latches, err := bus.I2cGet(addr, OLAT_A, 2)
	if err != nil {
		return nil, err
	}
	e.olat = uint16(latches[0]) | uint16(latches[1])<<8
	return e, nil
}

func (e *Expander) PinRange() gpio.PinRange {
	return PinRange
}

func (e *Expander) SetOutput(pin int) error {
	if err := PinRange.Check(pin); err != nil {
		return err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	mask := uint16(1) << uint(pin)
	if e.dir&mask == 0 {
		return nil
	}
	e.dir &^= mask
	return e.writePair(IODIR_A, e.dir)
}

func (e *Expander) Set(pin int, level gpio.Level) error {
	if err := PinRange.Check(pin); err != nil {
		return err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	mask := uint16(1) << uint(pin)
	if e.dir&mask != 0 {
		return fmt.Errorf("MCP23017 pin %v is not configured as output", pin)
	}
	if level == gpio.High {
		e.olat |= mask
	} else {
		e.olat &^= mask
	}
	return e.writePair(OLAT_A, e.olat)
}

func (e *Expander) StartPwm(pin int, frequency int) (gpio.Pwm, error) {
	if err := e.SetOutput(pin); err != nil {
		return nil, err
	}
	return gpio.StartSoftPwm(frequency, func(level gpio.Level) error {
		return e.Set(pin, level)
	})
}

// writePair writes the A register and its B partner.
func (e *Expander) writePair(register byte, value uint16) error {
	return e.bus.I2cWrite(e.addr, register, byte(value), byte(value>>8))
}
