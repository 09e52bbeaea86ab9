package hc595

import (
	"errors"
	"testing"

	"github.com/antongulenko/shiftreg/gpio"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	ds = 11
	st = 13
	sh = 15
	oe = 33
)

type testSuite struct {
	t *testing.T
	*require.Assertions

	pins *gpio.Dummy
}

func (suite *testSuite) T() *testing.T {
	return suite.t
}

func (suite *testSuite) SetT(t *testing.T) {
	suite.t = t
	suite.Assertions = require.New(t)
}

func (suite *testSuite) SetS(suite.TestingSuite) {}

func (s *testSuite) SetupTest() {
	s.pins = &gpio.Dummy{Record: true}
}

func TestAll(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) newDriver(depth int) *Driver {
	cfg := DefaultConfig
	cfg.ChainDepth = depth
	d, err := New(s.pins, cfg)
	s.NoError(err)
	s.pins.ResetOps()
	return d
}

func set(pin int, level gpio.Level) gpio.Op {
	return gpio.Op{Type: gpio.OpSet, Pin: pin, Level: level}
}

// shiftOps returns the expected pin operations for shifting in the bits and latching.
func shiftOps(bits ...byte) (ops []gpio.Op) {
	for _, bit := range bits {
		ops = append(ops, set(ds, bit == 1), set(sh, gpio.High), set(sh, gpio.Low))
	}
	return append(ops, set(st, gpio.High), set(st, gpio.Low))
}

func (s *testSuite) TestConstruction() {
	d, err := New(s.pins, DefaultConfig)
	s.NoError(err)
	s.Equal(make(Bits, 8), d.State())

	ops := s.pins.Ops()
	s.Equal([]gpio.Op{
		{Type: gpio.OpOutput, Pin: ds}, set(ds, gpio.Low),
		{Type: gpio.OpOutput, Pin: st}, set(st, gpio.Low),
		{Type: gpio.OpOutput, Pin: sh}, set(sh, gpio.Low),
		{Type: gpio.OpOutput, Pin: oe}, set(oe, gpio.Low),
	}, ops[:8], "board setup")
	s.Equal(shiftOps(0, 0, 0, 0, 0, 0, 0, 0), ops[8:], "initial clear")
}

func (s *testSuite) TestConstructionChainDepth() {
	d := s.newDriver(2)
	s.Equal(make(Bits, 16), d.State())
	s.Equal(16, d.Config().Capacity())
}

func (s *testSuite) TestConstructionThreeLines() {
	cfg := DefaultConfig
	cfg.OutputEnablePin = NoPin
	d, err := New(s.pins, cfg)
	s.NoError(err)
	for _, op := range s.pins.Ops() {
		s.NotEqual(oe, op.Pin)
	}
	s.pins.ResetOps()
	s.Equal(ErrNoOutputEnable, d.SetOutputDutyCycle(50))
	s.Empty(s.pins.Ops())
}

func (s *testSuite) TestInvalidConfig() {
	test := func(modify func(cfg *Config)) {
		cfg := DefaultConfig
		modify(&cfg)
		_, err := New(s.pins, cfg)
		s.True(errors.Is(err, ErrInvalidArgument), "config %+v: %v", cfg, err)
	}
	test(func(cfg *Config) { cfg.DataPin = 0 })
	test(func(cfg *Config) { cfg.ShiftClockPin = 41 })
	test(func(cfg *Config) { cfg.LatchClockPin = -5 })
	test(func(cfg *Config) { cfg.OutputEnablePin = 100 })
	test(func(cfg *Config) { cfg.ChainDepth = 0 })
	test(func(cfg *Config) { cfg.ChainDepth = -1 })
	test(func(cfg *Config) { cfg.PwmFrequency = 101 })
	test(func(cfg *Config) { cfg.PwmFrequency = -1 })
	s.Empty(s.pins.Ops(), "no pin I/O on invalid configuration")
}

func (s *testSuite) TestShiftBits() {
	d := s.newDriver(1)
	s.NoError(d.SetBits(1, 0, 1))
	s.Equal(shiftOps(1, 0, 1), s.pins.Ops())
	s.Equal(Bits{0, 0, 0, 0, 0, 1, 0, 1}, d.State())

	s.NoError(d.SetBools(true, true))
	s.Equal(Bits{0, 0, 0, 1, 0, 1, 1, 1}, d.State())
}

func (s *testSuite) TestShiftKeepsPreviousState() {
	d := s.newDriver(2)
	s.NoError(d.SetInt(999))
	prev := d.State()
	bits := Bits{1, 0, 0, 1, 1}
	s.NoError(d.Shift(bits))
	state := d.State()
	s.Len(state, 16)
	s.Equal(bits, state[16-len(bits):])
	s.Equal(prev[len(bits):], state[:16-len(bits)])
}

func (s *testSuite) TestShiftBeyondCapacity() {
	d := s.newDriver(1)
	s.NoError(d.SetInt(0x3FF)) // 10 bits
	s.Equal(Bits{1, 1, 1, 1, 1, 1, 1, 1}, d.State())
	s.Len(s.pins.Ops(), 10*3+2)
}

func (s *testSuite) TestSetInt() {
	d := s.newDriver(1)
	s.NoError(d.SetInt(12))
	s.Equal(Bits{0, 0, 0, 0, 1, 1, 0, 0}, d.State())
	s.Equal(shiftOps(1, 1, 0, 0), s.pins.Ops())

	s.NoError(d.SetInt(0))
	s.Equal(Bits{0, 0, 0, 1, 1, 0, 0, 0}, d.State())
}

func (s *testSuite) TestSetBool() {
	d := s.newDriver(1)
	s.NoError(d.SetBool(true))
	s.NoError(d.SetBool(false))
	s.Equal(Bits{0, 0, 0, 0, 0, 0, 1, 0}, d.State())
	s.Equal(append(shiftOps(1), shiftOps(0)...), s.pins.Ops())
}

func (s *testSuite) TestEmptyShiftLatchesOnly() {
	d := s.newDriver(1)
	s.NoError(d.SetInt(5))
	prev := d.State()
	s.pins.ResetOps()
	s.NoError(d.SetBits())
	s.Equal(prev, d.State())
	s.Equal([]gpio.Op{set(st, gpio.High), set(st, gpio.Low)}, s.pins.Ops())
}

func (s *testSuite) TestInvalidValues() {
	d := s.newDriver(1)
	s.True(errors.Is(d.SetBits(1, 0, 2), ErrInvalidArgument))
	s.True(errors.Is(d.SetInt(-3), ErrInvalidArgument))
	s.Empty(s.pins.Ops(), "rejected calls must not touch the pins")
	s.Equal(make(Bits, 8), d.State())
}

func (s *testSuite) TestShiftRejectsNonBinaryValues() {
	d := s.newDriver(1)
	s.NoError(d.SetInt(5))
	prev := d.State()
	s.pins.ResetOps()

	err := d.Shift(Bits{1, 2, 7})
	s.True(errors.Is(err, ErrInvalidArgument))
	s.Empty(s.pins.Ops(), "rejected shift must not touch the pins")
	s.Equal(prev, d.State())
}

func (s *testSuite) TestClear() {
	d := s.newDriver(3)
	s.NoError(d.SetInt(0xABCDEF))
	s.NoError(d.Clear())
	s.Equal(make(Bits, 24), d.State())
}

func (s *testSuite) TestOutputs() {
	d := s.newDriver(2)
	s.NoError(d.SetOutputs([]bool{true, false, true, false, false, false, false, false, false, true}))
	s.Equal(Bits{0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 1}, d.State())
	for i, expected := range []bool{true, false, true, false, false, false, false, false, false, true, false} {
		on, err := d.Output(i)
		s.NoError(err)
		s.Equal(expected, on, "output %v", i)
	}
	_, err := d.Output(16)
	s.True(errors.Is(err, ErrInvalidArgument))
	_, err = d.Output(-1)
	s.True(errors.Is(err, ErrInvalidArgument))

	s.pins.ResetOps()
	s.True(errors.Is(d.SetOutputs(make([]bool, 17)), ErrInvalidArgument))
	s.Empty(s.pins.Ops())
}

func (s *testSuite) TestDutyCycle() {
	d := s.newDriver(1)
	s.NoError(d.SetOutputDutyCycle(40))
	s.NoError(d.SetOutputDutyCycle(70))
	s.Equal([]gpio.Op{
		{Type: gpio.OpPwmStart, Pin: oe, Value: DefaultPwmFrequency},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 0},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 40},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 70},
	}, s.pins.Ops())

	s.pins.ResetOps()
	s.NoError(d.Close())
	s.Equal([]gpio.Op{{Type: gpio.OpPwmStop, Pin: oe}}, s.pins.Ops())
}

func (s *testSuite) TestInvalidDutyCycle() {
	d := s.newDriver(1)
	for _, duty := range []int{-1, 101, 150} {
		err := d.SetOutputDutyCycle(duty)
		s.True(errors.Is(err, ErrInvalidArgument), "duty cycle %v", duty)
	}
	s.Empty(s.pins.Ops())
}

func (s *testSuite) TestPwmFrequency() {
	d := s.newDriver(1)
	s.True(errors.Is(d.SetPwmFrequency(200), ErrInvalidArgument))
	s.NoError(d.SetPwmFrequency(50))
	s.Empty(s.pins.Ops(), "no PWM running yet")

	s.NoError(d.SetOutputDutyCycle(30))
	s.pins.ResetOps()
	s.NoError(d.SetPwmFrequency(0))
	s.Equal([]gpio.Op{
		{Type: gpio.OpPwmStop, Pin: oe},
		{Type: gpio.OpPwmStart, Pin: oe, Value: DefaultPwmFrequency},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 0},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 30},
	}, s.pins.Ops())
}

func (s *testSuite) TestPinSetters() {
	d := s.newDriver(1)
	s.NoError(d.SetDataPin(16))
	s.NoError(d.SetShiftClockPin(18))
	s.NoError(d.SetLatchClockPin(22))
	cfg := d.Config()
	s.Equal(16, cfg.DataPin)
	s.Equal(18, cfg.ShiftClockPin)
	s.Equal(22, cfg.LatchClockPin)
	s.Equal(oe, cfg.OutputEnablePin)
	s.Empty(s.pins.Ops(), "setters do not configure the new pins")

	for _, pin := range []int{0, 41, -1} {
		s.True(errors.Is(d.SetDataPin(pin), ErrInvalidArgument))
		s.True(errors.Is(d.SetShiftClockPin(pin), ErrInvalidArgument))
		s.True(errors.Is(d.SetLatchClockPin(pin), ErrInvalidArgument))
	}
	s.True(errors.Is(d.SetOutputEnablePin(0), ErrInvalidArgument))
	s.Equal(cfg, d.Config(), "rejected setters do not change the configuration")
}

func (s *testSuite) TestOutputEnablePinSetter() {
	d := s.newDriver(1)
	s.NoError(d.SetOutputDutyCycle(20))
	s.NoError(d.SetOutputEnablePin(32))
	s.NoError(d.SetOutputDutyCycle(10))
	s.Equal([]gpio.Op{
		{Type: gpio.OpPwmStart, Pin: oe, Value: DefaultPwmFrequency},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 0},
		{Type: gpio.OpPwmDuty, Pin: oe, Value: 20},
		{Type: gpio.OpPwmStop, Pin: oe},
		{Type: gpio.OpPwmStart, Pin: 32, Value: DefaultPwmFrequency},
		{Type: gpio.OpPwmDuty, Pin: 32, Value: 0},
		{Type: gpio.OpPwmDuty, Pin: 32, Value: 10},
	}, s.pins.Ops())

	s.NoError(d.SetOutputEnablePin(NoPin))
	s.Equal(ErrNoOutputEnable, d.SetOutputDutyCycle(10))
}

func (s *testSuite) TestChainDepthSetter() {
	d := s.newDriver(1)
	s.NoError(d.SetInt(0xFF))
	s.NoError(d.SetChainDepth(3))
	s.Equal(make(Bits, 24), d.State())
	s.Len(s.pins.Ops(), 8*3+2, "changing the depth does not touch the pins")

	for _, depth := range []int{0, -1} {
		s.True(errors.Is(d.SetChainDepth(depth), ErrInvalidArgument))
	}
	s.Equal(3, d.Config().ChainDepth)
	s.NoError(d.Clear())
	s.Equal(make(Bits, 24), d.State())
}
