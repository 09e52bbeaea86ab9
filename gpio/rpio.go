package gpio

import (
	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
)

// Rpio drives the Raspberry Pi GPIO registers through /dev/gpiomem.
// Pins are numbered by their physical position on the 40-pin header.
type Rpio struct{}

func OpenRpio() (*Rpio, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	log.Println("Opened Raspberry Pi GPIO memory")
	return new(Rpio), nil
}

func (r *Rpio) Close() error {
	return rpio.Close()
}

func (r *Rpio) PinRange() PinRange {
	return HeaderPins
}

func (r *Rpio) SetOutput(pin int) error {
	bcm, err := HeaderToBcm(pin)
	if err != nil {
		return err
	}
	rpio.Pin(bcm).Output()
	return nil
}

func (r *Rpio) Set(pin int, level Level) error {
	bcm, err := HeaderToBcm(pin)
	if err != nil {
		return err
	}
	if level {
		rpio.Pin(bcm).High()
	} else {
		rpio.Pin(bcm).Low()
	}
	return nil
}

func (r *Rpio) StartPwm(pin int, frequency int) (Pwm, error) {
	if _, err := HeaderToBcm(pin); err != nil {
		return nil, err
	}
	return StartSoftPwm(frequency, func(level Level) error {
		return r.Set(pin, level)
	})
}
