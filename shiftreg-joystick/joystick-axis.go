package main

import (
	"flag"
	"fmt"

	"github.com/splace/joysticks"
)

// JoystickAxis reads one dimension of a joystick hat.
type JoystickAxis struct {
	AxisNumber int
	UseY       bool
	Invert     bool

	// Positions between these values are bound to zero
	ZeroFrom, ZeroTo float64

	// If true, scale the value range to adjust for ZeroFrom/ZeroTo and make the entire value range -1..1 available
	ScaleZeroFromTo bool
}

func (a *JoystickAxis) RegisterFlags(prefix string, desc string) {
	flag.IntVar(&a.AxisNumber, prefix, a.AxisNumber, "Index for joystick axis for "+desc)
	flag.BoolVar(&a.UseY, prefix+"-y", a.UseY, "Use Y instead of X axis for "+desc)
	flag.BoolVar(&a.Invert, prefix+"-invert", a.Invert, "Invert axis direction of "+desc)
	flag.Float64Var(&a.ZeroFrom, prefix+"-zero-from", a.ZeroFrom, "Start of the zero interval of "+desc)
	flag.Float64Var(&a.ZeroTo, prefix+"-zero-to", a.ZeroTo, "End of the zero interval of "+desc)
	flag.BoolVar(&a.ScaleZeroFromTo, prefix+"-scale-zero", a.ScaleZeroFromTo, "Can be used to disable the value range adjustment after filtering based on the zero interval for "+desc)
}

func (a *JoystickAxis) Notify(js *joysticks.HID, hook func(val float32)) error {
	if !js.HatExists(uint8(a.AxisNumber)) {
		return fmt.Errorf("Joystick axis (%v) does not exist on device", a.AxisNumber)
	}
	moved := js.OnMove(uint8(a.AxisNumber))
	go func() {
		for event := range moved {
			coords := event.(joysticks.CoordsEvent)
			hook(a.value(coords.X, coords.Y))
		}
	}()
	return nil
}

func (a *JoystickAxis) value(x, y float32) float32 {
	val := x
	if a.UseY {
		val = y
	}
	if a.Invert {
		val = -val
	}
	return a.convert(val)
}

func (a *JoystickAxis) convert(val float32) float32 {
	zeroFrom := float32(a.ZeroFrom)
	zeroTo := float32(a.ZeroTo)
	if val >= zeroFrom && val <= zeroTo {
		val = 0
	} else if a.ScaleZeroFromTo {
		// Scale [-1..zeroFrom] and [zeroTo..1] to [-1..0] and [0..1]
		if val > 0 {
			val = (val - zeroTo) / (1 - zeroTo)
		} else if val < 0 {
			val = (zeroFrom - val) / (-1 - zeroFrom)
		}
	}
	return val
}

// axisToDuty maps an axis position to the output enable duty cycle. The
// lowest position dims the outputs completely, since OE is active low.
func axisToDuty(val float32) float64 {
	brightness := (float64(val) + 1) / 2 * 100
	return 100 - brightness
}
