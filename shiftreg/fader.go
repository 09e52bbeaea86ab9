package shiftreg

import (
	"flag"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var DefaultFader = Fader{
	SleepTime: 20 * time.Millisecond,
	SlopeTime: 500 * time.Millisecond,
}

// Fader moves a duty cycle smoothly towards a target value from a background
// goroutine, calling the setter after every step.
type Fader struct {
	SleepTime time.Duration
	SlopeTime time.Duration // Time to ramp between 0% and 100%, zero jumps immediately (as does a zero SleepTime)

	set     func(percent int) error
	cond    *sync.Cond
	target  float64
	current float64
	written int
	stopped bool
	done    chan struct{}
}

func (f *Fader) RegisterFlags(prefix string) {
	flag.DurationVar(&f.SleepTime, prefix+"fade-sleep", f.SleepTime, "Time to sleep between two fading steps")
	flag.DurationVar(&f.SlopeTime, prefix+"fade-slope", f.SlopeTime, "Time to fade between 0% and 100% duty cycle")
}

func (f *Fader) Start(initial float64, set func(percent int) error) {
	initial = clampPercent(initial)
	f.set = set
	f.cond = sync.NewCond(new(sync.Mutex))
	f.target, f.current = initial, initial
	f.written = -1
	f.done = make(chan struct{})
	go f.fadeLoop()
}

func (f *Fader) SetTarget(percent float64) {
	f.cond.L.Lock()
	defer f.cond.L.Unlock()
	f.target = clampPercent(percent)
	f.cond.Broadcast()
}

func (f *Fader) Current() float64 {
	f.cond.L.Lock()
	defer f.cond.L.Unlock()
	return f.current
}

// Stop ends the fading goroutine, the last written value stays in place.
func (f *Fader) Stop() {
	if f.cond == nil {
		return
	}
	f.cond.L.Lock()
	f.stopped = true
	f.cond.Broadcast()
	f.cond.L.Unlock()
	<-f.done
}

func (f *Fader) fadeLoop() {
	defer close(f.done)
	step := math.Inf(1)
	if f.SlopeTime > 0 && f.SleepTime > 0 {
		step = 100 * float64(f.SleepTime) / float64(f.SlopeTime)
	}
	f.write(f.current)
	for {
		f.cond.L.Lock()
		for f.target == f.current && !f.stopped {
			f.cond.Wait()
		}
		if f.stopped {
			f.cond.L.Unlock()
			return
		}
		f.current = fadeStep(f.current, f.target, step)
		value := f.current
		f.cond.L.Unlock()

		f.write(value)
		time.Sleep(f.SleepTime)
	}
}

func (f *Fader) write(value float64) {
	percent := int(math.Round(value))
	if percent == f.written {
		return
	}
	if err := f.set(percent); err != nil {
		log.Errorf("Failed to set duty cycle to %v%%: %v", percent, err)
		return
	}
	f.written = percent
}

func fadeStep(current, target, step float64) float64 {
	if math.Abs(target-current) <= step {
		return target
	}
	if target > current {
		return current + step
	}
	return current - step
}

func clampPercent(val float64) float64 {
	return math.Max(0, math.Min(100, val))
}
