package script

import (
	"fmt"
	"strings"
	"time"

	"github.com/antongulenko/shiftreg/hc595"
	log "github.com/sirupsen/logrus"
)

// Target receives the operations of a script, usually a *hc595.Driver.
type Target interface {
	Shift(bits hc595.Bits) error
	SetInt(value int) error
	SetBool(value bool) error
	SetOutputDutyCycle(percent int) error
	Clear() error
}

var _ Target = (*hc595.Driver)(nil)

type Runner struct {
	// Called for sleep statements, time.Sleep if nil
	Sleep func(d time.Duration)
}

// Run executes the script and stops at the first failing statement.
func (r *Runner) Run(script *Script, target Target) error {
	return r.run(script.Statements, target)
}

func (r *Runner) run(statements []*Statement, target Target) error {
	for _, stmt := range statements {
		if err := r.exec(stmt, target); err != nil {
			return fmt.Errorf("%v: %w", stmt.Pos, err)
		}
	}
	return nil
}

func (r *Runner) exec(stmt *Statement, target Target) error {
	switch {
	case stmt.Bits != nil:
		bits, err := hc595.ParseBits(strings.Join(stmt.Bits, ""))
		if err != nil {
			return err
		}
		return target.Shift(bits)
	case stmt.Int != nil:
		return target.SetInt(*stmt.Int)
	case stmt.Bool != nil:
		return target.SetBool(*stmt.Bool == "true")
	case stmt.Duty != nil:
		return target.SetOutputDutyCycle(*stmt.Duty)
	case stmt.Clear:
		return target.Clear()
	case stmt.Sleep != nil:
		d, err := time.ParseDuration(*stmt.Sleep)
		if err != nil {
			return err
		}
		r.sleep(d)
		return nil
	case stmt.Repeat != nil:
		for i := 0; i < stmt.Repeat.Count; i++ {
			log.Debugf("Script repetition %v of %v", i+1, stmt.Repeat.Count)
			if err := r.run(stmt.Repeat.Statements, target); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("Empty script statement")
	}
}

func (r *Runner) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
	} else {
		time.Sleep(d)
	}
}
