package gpio

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/gpiod"
)

const GpiodConsumer = "shiftreg"

// Gpiod drives the lines of one Linux gpiochip through the GPIO character
// device. Pins are line offsets on the chip.
type Gpiod struct {
	chip *gpiod.Chip

	lock  sync.Mutex
	lines map[int]*gpiod.Line
}

func OpenGpiod(chipName string) (*Gpiod, error) {
	chip, err := gpiod.NewChip(chipName, gpiod.WithConsumer(GpiodConsumer))
	if err != nil {
		return nil, err
	}
	log.Printf("Opened %v (%v lines)", chipName, chip.Lines())
	return &Gpiod{
		chip:  chip,
		lines: make(map[int]*gpiod.Line),
	}, nil
}

func (g *Gpiod) PinRange() PinRange {
	return PinRange{Min: 0, Max: g.chip.Lines() - 1}
}

func (g *Gpiod) SetOutput(pin int) error {
	if err := g.PinRange().Check(pin); err != nil {
		return err
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if _, ok := g.lines[pin]; ok {
		return nil
	}
	line, err := g.chip.RequestLine(pin, gpiod.AsOutput(0))
	if err != nil {
		return err
	}
	g.lines[pin] = line
	return nil
}

func (g *Gpiod) Set(pin int, level Level) error {
	g.lock.Lock()
	line, ok := g.lines[pin]
	g.lock.Unlock()
	if !ok {
		return fmt.Errorf("Line %v of %v has not been requested as output", pin, g.chip.Name)
	}
	value := 0
	if level {
		value = 1
	}
	return line.SetValue(value)
}

func (g *Gpiod) StartPwm(pin int, frequency int) (Pwm, error) {
	if err := g.SetOutput(pin); err != nil {
		return nil, err
	}
	return StartSoftPwm(frequency, func(level Level) error {
		return g.Set(pin, level)
	})
}

// Close releases all requested lines and the chip.
func (g *Gpiod) Close() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	var firstErr error
	for pin, line := range g.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.lines, pin)
	}
	if err := g.chip.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
