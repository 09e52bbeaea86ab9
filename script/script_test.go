package script

import (
	"errors"
	"testing"
	"time"

	"github.com/antongulenko/shiftreg/gpio"
	"github.com/antongulenko/shiftreg/hc595"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
# Comments are ignored
clear
int 12
bits 1 0 1
bits 1010_0000
bool true
duty 40
repeat 2 {
	sleep 20ms
	bool false
}
`

func parse(t *testing.T, input string) *Script {
	p, err := NewParser()
	require.NoError(t, err)
	script, err := p.ParseString(input)
	require.NoError(t, err)
	return script
}

func TestParse(t *testing.T) {
	a := assert.New(t)
	script := parse(t, testScript)
	a.Len(script.Statements, 7)
	a.True(script.Statements[0].Clear)
	a.Equal(12, *script.Statements[1].Int)
	a.Equal([]string{"1", "0", "1"}, script.Statements[2].Bits)
	a.Equal([]string{"1010_0000"}, script.Statements[3].Bits)
	a.Equal("true", *script.Statements[4].Bool)
	a.Equal(40, *script.Statements[5].Duty)

	repeat := script.Statements[6].Repeat
	a.NotNil(repeat)
	a.Equal(2, repeat.Count)
	a.Len(repeat.Statements, 2)
	a.Equal("20ms", *repeat.Statements[0].Sleep)
	a.Equal(5, script.Statements[3].Pos.Line)
}

func TestParseErrors(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	for _, input := range []string{
		"int -3",
		"bits",
		"bool maybe",
		"repeat 2 { clear",
		"blink 3",
	} {
		_, err := p.ParseString(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestRun(t *testing.T) {
	a := assert.New(t)
	pins := &gpio.Dummy{Record: true}
	d, err := hc595.New(pins, hc595.DefaultConfig)
	require.NoError(t, err)
	pins.ResetOps()

	var slept []time.Duration
	runner := Runner{Sleep: func(d time.Duration) {
		slept = append(slept, d)
	}}
	a.NoError(runner.Run(parse(t, testScript), d))
	a.Equal([]time.Duration{20 * time.Millisecond, 20 * time.Millisecond}, slept)
	a.Equal(hc595.Bits{0, 0, 0, 0, 0, 1, 0, 0}, d.State())

	var duties []int
	for _, op := range pins.Ops() {
		if op.Type == gpio.OpPwmDuty {
			duties = append(duties, op.Value)
		}
	}
	a.Equal([]int{0, 40}, duties)
}

func TestRunStopsOnError(t *testing.T) {
	a := assert.New(t)
	d, err := hc595.New(new(gpio.Dummy), hc595.DefaultConfig)
	require.NoError(t, err)

	runner := Runner{Sleep: func(time.Duration) {}}
	err = runner.Run(parse(t, "int 3\nduty 150\nint 1\n"), d)
	a.True(errors.Is(err, hc595.ErrInvalidArgument))
	a.Contains(err.Error(), "2:1")
	a.Equal(hc595.Bits{0, 0, 0, 0, 0, 0, 1, 1}, d.State(), "statements after the failure are not executed")

	err = runner.Run(parse(t, "bits 12"), d)
	a.True(errors.Is(err, hc595.ErrInvalidArgument))
}
