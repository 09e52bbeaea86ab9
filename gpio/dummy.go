package gpio

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type OpType int

const (
	OpOutput = OpType(iota + 1)
	OpSet
	OpPwmStart
	OpPwmDuty
	OpPwmStop
)

func (t OpType) String() string {
	switch t {
	case OpOutput:
		return "output"
	case OpSet:
		return "set"
	case OpPwmStart:
		return "pwm-start"
	case OpPwmDuty:
		return "pwm-duty"
	case OpPwmStop:
		return "pwm-stop"
	default:
		return fmt.Sprintf("OpType(%d)", int(t))
	}
}

// Op is one recorded call on a Dummy. Value holds the frequency for
// OpPwmStart and the duty cycle for OpPwmDuty.
type Op struct {
	Type  OpType
	Pin   int
	Level Level
	Value int
}

func (o Op) String() string {
	switch o.Type {
	case OpSet:
		return fmt.Sprintf("%v(%v, %v)", o.Type, o.Pin, o.Level)
	case OpPwmStart, OpPwmDuty:
		return fmt.Sprintf("%v(%v, %v)", o.Type, o.Pin, o.Value)
	default:
		return fmt.Sprintf("%v(%v)", o.Type, o.Pin)
	}
}

// Dummy performs no I/O. Every call is logged on debug level and, with Record
// set, appended to the list returned by Ops().
type Dummy struct {
	Range  PinRange // HeaderPins if unset
	Record bool

	lock    sync.Mutex
	ops     []Op
	outputs map[int]bool
	levels  map[int]Level
}

func (d *Dummy) PinRange() PinRange {
	if d.Range == (PinRange{}) {
		return HeaderPins
	}
	return d.Range
}

func (d *Dummy) SetOutput(pin int) error {
	if err := d.PinRange().Check(pin); err != nil {
		return err
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.outputs == nil {
		d.outputs = make(map[int]bool)
	}
	d.outputs[pin] = true
	d.record(Op{Type: OpOutput, Pin: pin})
	return nil
}

func (d *Dummy) Set(pin int, level Level) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if !d.outputs[pin] {
		return fmt.Errorf("Dummy pin %v is not configured as output", pin)
	}
	if d.levels == nil {
		d.levels = make(map[int]Level)
	}
	d.levels[pin] = level
	d.record(Op{Type: OpSet, Pin: pin, Level: level})
	return nil
}

func (d *Dummy) StartPwm(pin int, frequency int) (Pwm, error) {
	if err := d.PinRange().Check(pin); err != nil {
		return nil, err
	}
	if frequency <= 0 {
		return nil, fmt.Errorf("Illegal PWM frequency %v (must be positive)", frequency)
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.record(Op{Type: OpPwmStart, Pin: pin, Value: frequency})
	return &dummyPwm{dummy: d, pin: pin}, nil
}

// Level returns the last level written to the pin.
func (d *Dummy) Level(pin int) Level {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.levels[pin]
}

func (d *Dummy) Ops() []Op {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]Op(nil), d.ops...)
}

func (d *Dummy) ResetOps() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.ops = nil
}

func (d *Dummy) record(op Op) {
	log.Debugln("Dummy GPIO:", op)
	if d.Record {
		d.ops = append(d.ops, op)
	}
}

type dummyPwm struct {
	dummy   *Dummy
	pin     int
	stopped bool
}

func (p *dummyPwm) SetDutyCycle(percent int) error {
	if err := checkDutyCycle(percent); err != nil {
		return err
	}
	p.dummy.lock.Lock()
	defer p.dummy.lock.Unlock()
	if p.stopped {
		return fmt.Errorf("PWM on dummy pin %v is stopped", p.pin)
	}
	p.dummy.record(Op{Type: OpPwmDuty, Pin: p.pin, Value: percent})
	return nil
}

func (p *dummyPwm) Stop() error {
	p.dummy.lock.Lock()
	defer p.dummy.lock.Unlock()
	if !p.stopped {
		p.stopped = true
		p.dummy.record(Op{Type: OpPwmStop, Pin: p.pin})
	}
	return nil
}
