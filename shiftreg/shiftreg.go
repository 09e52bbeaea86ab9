package shiftreg

import (
	"flag"
	"fmt"
	"sync"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/hid"
	"github.com/antongulenko/shiftreg/ft260"
	"github.com/antongulenko/shiftreg/gpio"
	"github.com/antongulenko/shiftreg/hc595"
	"github.com/antongulenko/shiftreg/mcp23017"
	"github.com/antongulenko/shiftreg/pca9685"
	log "github.com/sirupsen/logrus"
)

const (
	BackendRpio     = "rpio"
	BackendGpiod    = "gpiod"
	BackendFt260    = "ft260"
	BackendMcp23017 = "mcp23017"
	BackendPca9685  = "pca9685"
	BackendDummy    = "dummy"
)

var Backends = []string{BackendRpio, BackendGpiod, BackendFt260, BackendMcp23017, BackendPca9685, BackendDummy}

var DefaultShiftReg = ShiftReg{
	Backend:      BackendRpio,
	GpioChip:     "gpiochip0",
	ExpanderAddr: int(mcp23017.ADDRESS),
	PwmAddr:      int(pca9685.ADDRESS),
	Config:       hc595.DefaultConfig,
}

// ShiftReg opens a GPIO backend and a 74HC595 driver on top of it.
// Access the driver through Do(), which serializes all callers.
type ShiftReg struct {
	Backend      string
	GpioChip     string // For BackendGpiod
	UsbDevice    string // For all backends connected through an FT260
	ExpanderAddr int    // For BackendMcp23017
	PwmAddr      int    // For BackendPca9685
	Dummy        bool

	Config hc595.Config

	lock   *sync.Mutex // Created by Setup
	pins   gpio.Pins
	closer func() error
	driver *hc595.Driver
}

func (s *ShiftReg) RegisterFlags() {
	flag.StringVar(&s.Backend, "backend", s.Backend, fmt.Sprintf("GPIO backend, one of %v", Backends))
	flag.StringVar(&s.GpioChip, "chip", s.GpioChip, "GPIO chip for the gpiod backend")
	flag.StringVar(&s.UsbDevice, "dev", s.UsbDevice, "Specify a USB path for the backends connected through an FT260")
	flag.IntVar(&s.ExpanderAddr, "expander-addr", s.ExpanderAddr, "I2C address of the MCP23017 port expander, connected through an FT260")
	flag.IntVar(&s.PwmAddr, "pwm-addr", s.PwmAddr, "I2C address of the PCA9685 PWM controller, connected through an FT260")
	flag.BoolVar(&s.Dummy, "dummy", s.Dummy, "Do not access any GPIO pins, only log the pin operations")
	flag.IntVar(&s.Config.DataPin, "ds", s.Config.DataPin, "Serial data pin (DS)")
	flag.IntVar(&s.Config.ShiftClockPin, "sh", s.Config.ShiftClockPin, "Shift register clock pin (SH_CP)")
	flag.IntVar(&s.Config.LatchClockPin, "st", s.Config.LatchClockPin, "Storage register clock pin (ST_CP)")
	flag.IntVar(&s.Config.OutputEnablePin, "oe", s.Config.OutputEnablePin, fmt.Sprintf("Output enable pin (OE), %v if not connected", hc595.NoPin))
	flag.IntVar(&s.Config.ChainDepth, "chain", s.Config.ChainDepth, "Number of daisy-chained 74HC595")
	flag.IntVar(&s.Config.PwmFrequency, "pwm-freq", s.Config.PwmFrequency, "Frequency of the output enable PWM signal (1..100 Hz)")
}

func (s *ShiftReg) Setup() error {
	backend := s.Backend
	if s.Dummy {
		log.Println("Dummy mode: skipping initialization of GPIO peripherals")
		backend = BackendDummy
	}
	if s.lock == nil {
		s.lock = new(sync.Mutex)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.openBackend(backend); err != nil {
		return err
	}
	driver, err := hc595.New(s.pins, s.Config)
	if err != nil {
		golib.Printerr(s.closeBackend())
		return err
	}
	s.driver = driver
	log.Printf("Successfully initialized 74HC595 chain on %v backend", backend)
	return nil
}

func (s *ShiftReg) openBackend(backend string) error {
	switch backend {
	case BackendRpio:
		pins, err := gpio.OpenRpio()
		if err != nil {
			return err
		}
		s.pins, s.closer = pins, pins.Close
	case BackendGpiod:
		pins, err := gpio.OpenGpiod(s.GpioChip)
		if err != nil {
			return err
		}
		s.pins, s.closer = pins, pins.Close
	case BackendFt260, BackendMcp23017, BackendPca9685:
		if err := hid.Init(); err != nil {
			return err
		}
		usb, err := ft260.OpenPath(s.UsbDevice)
		if err != nil {
			golib.Printerr(hid.Shutdown())
			return err
		}
		closer := func() error {
			err := usb.Close()
			golib.Printerr(hid.Shutdown())
			return err
		}
		var pins gpio.Pins
		switch backend {
		case BackendFt260:
			pins, err = ft260.NewGpioPins(usb)
		case BackendMcp23017:
			pins, err = mcp23017.New(usb, byte(s.ExpanderAddr))
		case BackendPca9685:
			pins, err = pca9685.New(usb, byte(s.PwmAddr))
		}
		if err != nil {
			golib.Printerr(closer())
			return err
		}
		s.pins, s.closer = pins, closer
	case BackendDummy:
		s.pins = new(gpio.Dummy)
	default:
		return fmt.Errorf("Unknown GPIO backend %v, available backends: %v", backend, Backends)
	}
	return nil
}

// Do runs f with exclusive access to the driver.
func (s *ShiftReg) Do(f func(d *hc595.Driver) error) error {
	if s.lock == nil {
		return fmt.Errorf("74HC595 driver is not initialized")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.driver == nil {
		return fmt.Errorf("74HC595 driver is not initialized")
	}
	return f(s.driver)
}

func (s *ShiftReg) State() (state hc595.Bits) {
	_ = s.Do(func(d *hc595.Driver) error {
		state = d.State()
		return nil
	})
	return
}

// Close stops the output enable signal and releases the backend. The outputs
// keep their current values.
func (s *ShiftReg) Close() {
	if s.lock == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.driver != nil {
		golib.Printerr(s.driver.Close())
		s.driver = nil
	}
	golib.Printerr(s.closeBackend())
}

// Cleanup switches all outputs off before closing.
func (s *ShiftReg) Cleanup() {
	golib.Printerr(s.Do(func(d *hc595.Driver) error {
		return d.Clear()
	}))
	s.Close()
}

func (s *ShiftReg) closeBackend() (err error) {
	if s.closer != nil {
		err = s.closer()
	}
	s.pins, s.closer = nil, nil
	return
}
