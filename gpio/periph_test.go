package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

type fakePin struct {
	number int
	levels []pgpio.Level
	duty   pgpio.Duty
	freq   physic.Frequency
}

func (p *fakePin) String() string   { return p.Name() }
func (p *fakePin) Halt() error      { return nil }
func (p *fakePin) Name() string     { return "fake" }
func (p *fakePin) Number() int      { return p.number }
func (p *fakePin) Function() string { return "Out" }

func (p *fakePin) Out(l pgpio.Level) error {
	p.levels = append(p.levels, l)
	return nil
}

func (p *fakePin) PWM(duty pgpio.Duty, f physic.Frequency) error {
	p.duty, p.freq = duty, f
	return nil
}

func TestPeriphPins(t *testing.T) {
	a := assert.New(t)
	pins := []*fakePin{{number: 0}, {number: 1}}
	p := &Periph{Lines: []pgpio.PinOut{pins[0], pins[1]}}
	a.Equal(PinRange{Min: 0, Max: 1}, p.PinRange())

	a.NoError(p.SetOutput(0))
	a.NoError(p.Set(0, High))
	a.Equal([]pgpio.Level{pgpio.Low, pgpio.High}, pins[0].levels)
	a.Error(p.Set(2, High))

	pwm, err := p.StartPwm(1, 100)
	a.NoError(err)
	a.Equal(pgpio.Duty(0), pins[1].duty)
	a.Equal(100*physic.Hertz, pins[1].freq)
	a.NoError(pwm.SetDutyCycle(50))
	a.Equal(pgpio.DutyHalf, pins[1].duty)
	a.NoError(pwm.SetDutyCycle(100))
	a.Equal(pgpio.DutyMax, pins[1].duty)
	a.Error(pwm.SetDutyCycle(101))
	a.NoError(pwm.Stop())
	a.Equal([]pgpio.Level{pgpio.Low}, pins[1].levels)
}
