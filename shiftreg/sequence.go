package shiftreg

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/antongulenko/shiftreg/hc595"
)

var DefaultSequence = Sequence{
	Bounce:         false,
	PeakRadius:     4,
	Threshold:      0.5,
	SleepTime:      50 * time.Millisecond,
	PeakTravelTime: 1300 * time.Millisecond,
}

// Sequence is a running light: a brightness peak travels over the outputs,
// every output brighter than Threshold is switched on.
type Sequence struct {
	Bounce         bool // Travel back and forth instead of wrapping around
	NumOutputs     int
	PeakRadius     int           // Number of outputs around the brightness peak that are not dark
	Threshold      float64       // 0..1
	SleepTime      time.Duration // Time resolution for output updates
	PeakTravelTime time.Duration // Time for the peak to travel over all outputs
}

func (s *Sequence) RegisterFlags(prefix string) {
	flag.BoolVar(&s.Bounce, prefix+"bounce", s.Bounce, "Let the running light travel back and forth")
	flag.IntVar(&s.PeakRadius, prefix+"radius", s.PeakRadius, "Number of outputs around the running light peak that are not dark")
	flag.Float64Var(&s.Threshold, prefix+"threshold", s.Threshold, "Brightness threshold (0..1) for switching an output on")
	flag.DurationVar(&s.SleepTime, prefix+"sleep", s.SleepTime, "Time between two running light steps")
	flag.DurationVar(&s.PeakTravelTime, prefix+"travel", s.PeakTravelTime, "Time for the running light to pass all outputs once")
}

func (s *Sequence) StepsPerRound() int {
	return int(s.PeakTravelTime / s.SleepTime)
}

func (s *Sequence) Run(numRounds int, callback func(sleepTime time.Duration, outputs []bool) error) error {
	if s.NumOutputs <= 0 || s.SleepTime <= 0 || s.PeakRadius <= 0 {
		return fmt.Errorf("Invalid running light sequence: %v outputs, peak radius %v, sleep time %v", s.NumOutputs, s.PeakRadius, s.SleepTime)
	}
	stepsPerRound := s.StepsPerRound()
	numSteps := stepsPerRound * numRounds
	outputs := make([]bool, s.NumOutputs)
	for i := 0; i < numSteps; i++ {
		peak := float64(i) * float64(s.NumOutputs) / float64(stepsPerRound)
		s.fill(s.peakPosition(peak), outputs)
		if err := callback(s.SleepTime, outputs); err != nil {
			return fmt.Errorf("Error during running light sequence, step %v of %v: %v", i, numSteps, err)
		}
	}
	return nil
}

// Play runs the sequence on the chain, filling all its outputs.
func (s *Sequence) Play(reg *ShiftReg, numRounds int) error {
	seq := *s
	err := reg.Do(func(d *hc595.Driver) error {
		seq.NumOutputs = d.Config().Capacity()
		return nil
	})
	if err != nil {
		return err
	}
	return seq.Run(numRounds, func(sleepTime time.Duration, outputs []bool) error {
		err := reg.Do(func(d *hc595.Driver) error {
			return d.SetOutputs(outputs)
		})
		if err == nil {
			time.Sleep(sleepTime)
		}
		return err
	})
}

func (s *Sequence) peakPosition(t float64) float64 {
	max := float64(s.NumOutputs)
	if !s.Bounce {
		return t - math.Floor(t/max)*max
	}
	if s.NumOutputs == 1 {
		return 0
	}
	period := 2 * (max - 1)
	t = t - math.Floor(t/period)*period
	if t > max-1 {
		t = period - t
	}
	return t
}

func (s *Sequence) fill(peak float64, outputs []bool) {
	max := float64(len(outputs))
	for i := range outputs {
		dist := math.Abs(float64(i) - peak)
		if !s.Bounce && max-dist < dist {
			// Distance wrapping around the end of the chain
			dist = max - dist
		}
		outputs[i] = Brightness(dist, s.PeakRadius) > s.Threshold
	}
}

// Brightness maps the distance from the peak to 0..1 on a cosine curve.
func Brightness(dist float64, radius int) float64 {
	if dist > float64(radius) {
		return 0
	}
	v := math.Cos(dist / float64(radius) * math.Pi)
	return (v + 1) / 2
}
