package shiftreg

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFadeStep(t *testing.T) {
	a := assert.New(t)
	a.Equal(10.0, fadeStep(0, 50, 10))
	a.Equal(40.0, fadeStep(50, 0, 10))
	a.Equal(50.0, fadeStep(45, 50, 10))
	a.Equal(0.0, fadeStep(5, 0, 10))
	a.Equal(100.0, fadeStep(0, 100, 1000))
	a.Equal(30.0, fadeStep(30, 30, 10))
}

type dutyRecorder struct {
	lock   sync.Mutex
	values []int
}

func (r *dutyRecorder) set(percent int) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.values = append(r.values, percent)
	return nil
}

func (r *dutyRecorder) recorded() []int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]int(nil), r.values...)
}

func (r *dutyRecorder) last() int {
	values := r.recorded()
	if len(values) == 0 {
		return -1
	}
	return values[len(values)-1]
}

func TestFaderRamp(t *testing.T) {
	a := assert.New(t)
	var rec dutyRecorder
	f := Fader{SleepTime: time.Millisecond, SlopeTime: 10 * time.Millisecond}
	f.Start(0, rec.set)
	defer f.Stop()

	f.SetTarget(50)
	require.Eventually(t, func() bool { return rec.last() == 50 }, 2*time.Second, time.Millisecond)
	values := rec.recorded()
	a.Equal([]int{0, 10, 20, 30, 40, 50}, values)
	a.Equal(50.0, f.Current())

	f.SetTarget(150) // Clamped
	require.Eventually(t, func() bool { return rec.last() == 100 }, 2*time.Second, time.Millisecond)
	f.SetTarget(-20)
	require.Eventually(t, func() bool { return rec.last() == 0 }, 2*time.Second, time.Millisecond)
}

func TestFaderJump(t *testing.T) {
	var rec dutyRecorder
	f := Fader{SleepTime: time.Millisecond}
	f.Start(20, rec.set)
	f.SetTarget(80)
	require.Eventually(t, func() bool { return rec.last() == 80 }, 2*time.Second, time.Millisecond)
	f.Stop()
	assert.Equal(t, []int{20, 80}, rec.recorded())
}

func TestFaderZeroSleepJumps(t *testing.T) {
	var rec dutyRecorder
	f := Fader{SleepTime: 0, SlopeTime: 500 * time.Millisecond}
	f.Start(10, rec.set)
	f.SetTarget(70)
	require.Eventually(t, func() bool { return rec.last() == 70 }, 2*time.Second, time.Millisecond)
	f.Stop()
	assert.Equal(t, []int{10, 70}, rec.recorded())
	assert.Equal(t, 70.0, f.Current())
}
