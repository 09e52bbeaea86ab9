package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/shiftreg/hc595"
	"github.com/antongulenko/shiftreg/shiftreg"
	log "github.com/sirupsen/logrus"
	"github.com/splace/joysticks"
)

func main() {
	controller := controller{
		joystickIndex:         1,
		joystickRetryDuration: 2 * time.Second,
		firstOutputButton:     1,
		numOutputButtons:      8,
		sequenceButton:        10,
		startupSequenceRounds: 1,
		reg:                   shiftreg.DefaultShiftReg,
		sequence:              shiftreg.DefaultSequence,
		fader:                 shiftreg.DefaultFader,
		BrightnessAxis: JoystickAxis{
			AxisNumber:      2,
			UseY:            true,
			Invert:          true,
			ZeroFrom:        -0.05,
			ZeroTo:          0.05,
			ScaleZeroFromTo: true,
		},
	}
	controller.registerFlags()
	golib.RegisterFlags(golib.FlagsAll)
	flag.Parse()
	golib.ConfigureLogging()

	// "Clean" shutdown with Ctrl-C signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(controller.stop)
	}
	defer cleanup()
	go func() {
		fmt.Println("Received signal", <-c)
		cleanup()
		os.Exit(0)
	}()

	controller.run() // Does not return
}

type controller struct {
	joystickIndex         int
	joystickRetryDuration time.Duration
	firstOutputButton     int
	numOutputButtons      int
	sequenceButton        int
	startupSequenceRounds int

	BrightnessAxis JoystickAxis

	reg      shiftreg.ShiftReg
	sequence shiftreg.Sequence
	fader    shiftreg.Fader

	outputsLock     sync.Mutex
	outputs         []bool
	sequenceRunning int32
}

func (c *controller) registerFlags() {
	c.reg.RegisterFlags()
	c.sequence.RegisterFlags("seq-")
	c.fader.RegisterFlags("")
	c.BrightnessAxis.RegisterFlags("brightness", "axis for output brightness")
	flag.IntVar(&c.joystickIndex, "js", c.joystickIndex, "Joystick device index")
	flag.DurationVar(&c.joystickRetryDuration, "js-retry", c.joystickRetryDuration, "Time to retry joystick initialization")
	flag.IntVar(&c.firstOutputButton, "first-button", c.firstOutputButton, "Joystick button index that toggles the first output")
	flag.IntVar(&c.numOutputButtons, "buttons", c.numOutputButtons, "Number of consecutive joystick buttons that toggle outputs")
	flag.IntVar(&c.sequenceButton, "sequence-button", c.sequenceButton, "Joystick button index to manually trigger the running light")
	flag.IntVar(&c.startupSequenceRounds, "startup-sequence", c.startupSequenceRounds, "Number of startup running light rounds (can be disabled)")
}

func (c *controller) run() {
	golib.Checkerr(c.reg.Setup())
	golib.Checkerr(c.reg.Do(func(d *hc595.Driver) error {
		c.outputs = make([]bool, d.Config().Capacity())
		return nil
	}))
	if c.reg.Config.OutputEnablePin != hc595.NoPin {
		c.fader.Start(0, func(percent int) error {
			return c.reg.Do(func(d *hc595.Driver) error {
				return d.SetOutputDutyCycle(percent)
			})
		})
	}

	if c.startupSequenceRounds > 0 {
		log.Println("Initialization done, running startup sequence...")
		c.runSequence(c.startupSequenceRounds)
	}

	// Wait until the joystick can be initialized successfully
	var js *joysticks.HID
	var err error
	for {
		if js, err = c.setupJoystick(); err != nil {
			log.Errorf("Failed to setup joystick: %v. Retrying in %v...", err, c.joystickRetryDuration)
			time.Sleep(c.joystickRetryDuration)
		} else {
			log.Printf("Opened joystick device index %v (%v buttons, %v axes, %v events)", c.joystickIndex, len(js.Buttons), len(js.HatAxes), len(js.Events))
			break
		}
	}
	js.ParcelOutEvents() // Does not return
}

func (c *controller) setupJoystick() (*joysticks.HID, error) {
	js := joysticks.Connect(c.joystickIndex)
	if js == nil {
		return nil, fmt.Errorf("Failed to open joystick with index %v", c.joystickIndex)
	}

	for i := 0; i < c.numOutputButtons && i < len(c.outputs); i++ {
		button := uint8(c.firstOutputButton + i)
		if !js.ButtonExists(button) {
			return nil, fmt.Errorf("Button for toggling output %v (index %v) does not exist on joystick", i, button)
		}
		pressed := js.OnClose(button)
		output := i
		go func() {
			for range pressed {
				golib.Printerr(c.toggleOutput(output))
			}
		}()
	}

	sequenceButton := uint8(c.sequenceButton)
	if !js.ButtonExists(sequenceButton) {
		return nil, fmt.Errorf("Button for triggering the running light (index %v) does not exist on joystick", sequenceButton)
	}
	runSequence := js.OnClose(sequenceButton)
	go func() {
		for range runSequence {
			c.runSequence(1)
		}
	}()

	if c.reg.Config.OutputEnablePin != hc595.NoPin {
		if err := c.BrightnessAxis.Notify(js, func(val float32) {
			c.fader.SetTarget(axisToDuty(val))
		}); err != nil {
			return nil, err
		}
	}
	return js, nil
}

func (c *controller) toggleOutput(i int) error {
	if atomic.LoadInt32(&c.sequenceRunning) != 0 {
		return nil
	}
	c.outputsLock.Lock()
	defer c.outputsLock.Unlock()
	c.outputs[i] = !c.outputs[i]
	log.Printf("Switching output %v %v", i, onOff(c.outputs[i]))
	return c.reg.Do(func(d *hc595.Driver) error {
		return d.SetOutputs(c.outputs)
	})
}

// runSequence plays the running light and restores the toggled outputs afterwards.
func (c *controller) runSequence(numRounds int) {
	if !atomic.CompareAndSwapInt32(&c.sequenceRunning, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&c.sequenceRunning, 0)
	if err := c.sequence.Play(&c.reg, numRounds); err != nil {
		log.Errorf("Running light sequence failed: %v", err)
	}
	c.outputsLock.Lock()
	defer c.outputsLock.Unlock()
	golib.Printerr(c.reg.Do(func(d *hc595.Driver) error {
		return d.SetOutputs(c.outputs)
	}))
}

func (c *controller) stop() {
	c.fader.Stop()
	c.reg.Cleanup()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
