package gpio

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// SoftPwm generates a PWM signal by toggling a single line from a goroutine.
// Backends without PWM hardware return it from StartPwm.
type SoftPwm struct {
	set    func(level Level) error
	period time.Duration

	lock     sync.Mutex
	duty     int
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	level   Level
	written bool
	failing bool
}

func StartSoftPwm(frequency int, set func(level Level) error) (*SoftPwm, error) {
	if frequency <= 0 {
		return nil, fmt.Errorf("Illegal PWM frequency %v (must be positive)", frequency)
	}
	p := &SoftPwm{
		set:    set,
		period: time.Second / time.Duration(frequency),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func (p *SoftPwm) SetDutyCycle(percent int) error {
	if err := checkDutyCycle(percent); err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.duty = percent
	return nil
}

func (p *SoftPwm) DutyCycle() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.duty
}

// Stop ends the signal and leaves the line low. Stopping twice is a no-op.
func (p *SoftPwm) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
	return nil
}

func (p *SoftPwm) run() {
	defer close(p.done)
	defer p.write(Low)
	for {
		high := p.period * time.Duration(p.DutyCycle()) / 100
		low := p.period - high
		if high > 0 {
			p.write(High)
			if !p.sleep(high) {
				return
			}
		}
		if low > 0 {
			p.write(Low)
			if !p.sleep(low) {
				return
			}
		}
	}
}

func (p *SoftPwm) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.stop:
		return false
	case <-timer.C:
		return true
	}
}

// write skips redundant writes, so duty cycles of 0 and 100 hold the line steady.
func (p *SoftPwm) write(level Level) {
	if p.written && p.level == level {
		return
	}
	if err := p.set(level); err != nil {
		if !p.failing {
			log.Errorf("Software PWM failed to set line %v: %v", level, err)
		}
		p.failing = true
		return
	}
	p.failing = false
	p.written = true
	p.level = level
}
