package mcp23017

import (
	"testing"

	"github.com/antongulenko/shiftreg/gpio"
	"github.com/stretchr/testify/suite"
)

type fakeBus struct {
	writes  [][]byte
	latches []byte
}

func (b *fakeBus) I2cWrite(addr byte, data ...byte) error {
	b.writes = append(b.writes, append([]byte{addr}, data...))
	return nil
}

func (b *fakeBus) I2cGet(addr byte, register byte, size int) ([]byte, error) {
	return b.latches[:size], nil
}

func TestAll(t *testing.T) {
	suite.Run(t, new(expanderSuite))
}

type expanderSuite struct {
	suite.Suite
	bus *fakeBus
	e   *Expander
}

func (s *expanderSuite) SetupTest() {
	s.bus = &fakeBus{latches: []byte{0x01, 0x80}}
	e, err := New(s.bus, ADDRESS)
	s.Require().NoError(err)
	s.e = e
	s.bus.writes = nil
}

func (s *expanderSuite) TestInit() {
	bus := &fakeBus{latches: []byte{0, 0}}
	_, err := New(bus, ADDRESS+1)
	s.NoError(err)
	s.Equal([][]byte{
		{0x21, IOCON, 0},
		{0x21, IODIR_A, 0xFF, 0xFF},
	}, bus.writes)

	_, err = New(bus, 0x40)
	s.Error(err)
}

func (s *expanderSuite) TestOutputs() {
	s.Equal(gpio.PinRange{Min: 0, Max: 15}, s.e.PinRange())
	s.Error(s.e.Set(3, gpio.High), "not an output")
	s.Error(s.e.SetOutput(16))

	s.NoError(s.e.SetOutput(3))
	s.NoError(s.e.SetOutput(3))
	s.NoError(s.e.SetOutput(12))
	s.NoError(s.e.Set(3, gpio.High))
	s.NoError(s.e.Set(12, gpio.High))
	s.NoError(s.e.Set(3, gpio.Low))
	s.Equal([][]byte{
		{ADDRESS, IODIR_A, 0xF7, 0xFF},
		{ADDRESS, IODIR_A, 0xF7, 0xEF},
		{ADDRESS, OLAT_A, 0x09, 0x80},
		{ADDRESS, OLAT_A, 0x09, 0x90},
		{ADDRESS, OLAT_A, 0x01, 0x90},
	}, s.bus.writes)
}
