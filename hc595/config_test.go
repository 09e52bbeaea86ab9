package hc595

import (
	"errors"
	"testing"

	"github.com/antongulenko/shiftreg/gpio"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	a := assert.New(t)
	cfg := DefaultConfig
	a.NoError(cfg.Validate(gpio.HeaderPins))
	a.Equal(8, cfg.Capacity())

	// The default pins do not exist on an FT260
	err := cfg.Validate(gpio.PinRange{Min: 0, Max: 13})
	a.True(errors.Is(err, ErrInvalidArgument))
	a.EqualError(err, "hc595: invalid argument: data pin 11 must be within pin range 0..13")

	cfg = Config{DataPin: 0, ShiftClockPin: 1, LatchClockPin: 2, OutputEnablePin: NoPin, ChainDepth: 4}
	a.NoError(cfg.Validate(gpio.PinRange{Min: 0, Max: 13}))
	a.Equal(32, cfg.Capacity())
	a.Equal(DefaultPwmFrequency, cfg.pwmFrequency())
	cfg.PwmFrequency = 60
	a.Equal(60, cfg.pwmFrequency())
}

func TestArgumentError(t *testing.T) {
	a := assert.New(t)
	err := argumentErrorf("chain depth must be positive (got %v)", 0)
	a.True(errors.Is(err, ErrInvalidArgument))
	a.False(errors.Is(err, ErrNoOutputEnable))
	var argErr *ArgumentError
	a.True(errors.As(err, &argErr))
	a.Equal("chain depth must be positive (got 0)", argErr.Msg)
}
