package gpio

import (
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Periph adapts periph.io output pins. Pin numbers index the Lines slice.
// PWM is delegated to the pins, so it only works where the underlying
// periph driver supports it.
type Periph struct {
	Lines []pgpio.PinOut
}

func (p *Periph) PinRange() PinRange {
	return PinRange{Min: 0, Max: len(p.Lines) - 1}
}

func (p *Periph) line(pin int) (pgpio.PinOut, error) {
	if err := p.PinRange().Check(pin); err != nil {
		return nil, err
	}
	return p.Lines[pin], nil
}

// SetOutput drives the pin low, periph pins become outputs on the first write.
func (p *Periph) SetOutput(pin int) error {
	return p.Set(pin, Low)
}

func (p *Periph) Set(pin int, level Level) error {
	line, err := p.line(pin)
	if err != nil {
		return err
	}
	return line.Out(pgpio.Level(level))
}

func (p *Periph) StartPwm(pin int, frequency int) (Pwm, error) {
	line, err := p.line(pin)
	if err != nil {
		return nil, err
	}
	pwm := &periphPwm{
		line:      line,
		frequency: physic.Frequency(frequency) * physic.Hertz,
	}
	if err := pwm.SetDutyCycle(0); err != nil {
		return nil, err
	}
	return pwm, nil
}

type periphPwm struct {
	line      pgpio.PinOut
	frequency physic.Frequency
}

func (p *periphPwm) SetDutyCycle(percent int) error {
	if err := checkDutyCycle(percent); err != nil {
		return err
	}
	return p.line.PWM(DutyFromPercent(percent), p.frequency)
}

func (p *periphPwm) Stop() error {
	return p.line.Out(pgpio.Low)
}

func DutyFromPercent(percent int) pgpio.Duty {
	return pgpio.Duty(int64(pgpio.DutyMax) * int64(percent) / 100)
}
