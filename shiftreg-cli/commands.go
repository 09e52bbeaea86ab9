package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/antongulenko/shiftreg/hc595"
	"github.com/antongulenko/shiftreg/script"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dutyHold       time.Duration
	sequenceRounds int
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Shift values into the chain",
}

var setBitsCmd = &cobra.Command{
	Use:   "bits BITS...",
	Short: "Shift in explicit bits, the last bit ends up on the first output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bits, err := hc595.ParseBits(strings.Join(args, ""))
		if err != nil {
			return err
		}
		return shift(func(d *hc595.Driver) error {
			return d.Shift(bits)
		})
	},
}

var setIntCmd = &cobra.Command{
	Use:   "int VALUE",
	Short: "Shift in the binary representation of a non-negative integer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("Failed to parse integer value %q: %v", args[0], err)
		}
		return shift(func(d *hc595.Driver) error {
			return d.SetInt(value)
		})
	},
}

var setBoolCmd = &cobra.Command{
	Use:   "bool true|false",
	Short: "Shift in a single bit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("Failed to parse boolean value %q: %v", args[0], err)
		}
		return shift(func(d *hc595.Driver) error {
			return d.SetBool(value)
		})
	},
}

var setOutputsCmd = &cobra.Command{
	Use:   "outputs BITS...",
	Short: "Replace the whole chain, the first given bit controls the first output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bits, err := hc595.ParseBits(strings.Join(args, ""))
		if err != nil {
			return err
		}
		return shift(func(d *hc595.Driver) error {
			return d.SetOutputs(bits.Bools())
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Switch all outputs off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return shift(func(d *hc595.Driver) error {
			return d.Clear()
		})
	},
}

var dutyCmd = &cobra.Command{
	Use:   "duty PERCENT",
	Short: "Drive the output enable pin with a PWM signal",
	Long: `Drive the output enable pin with a PWM signal of the given duty cycle.
The output enable pin is active low, so 0 means full brightness and 100 switches
all outputs off. The signal is generated by this process and keeps running
until the hold time passes or the process receives SIGINT or SIGTERM.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		percent, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("Failed to parse duty cycle %q: %v", args[0], err)
		}
		if err := reg.Do(func(d *hc595.Driver) error {
			return d.SetOutputDutyCycle(percent)
		}); err != nil {
			return err
		}
		log.Printf("Output enable duty cycle set to %v%%", percent)
		waitForSignal(dutyHold)
		return nil
	},
}

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Run a pattern script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser, err := script.NewParser()
		if err != nil {
			return err
		}
		s, err := parser.ParseFile(args[0])
		if err != nil {
			return err
		}
		var runner script.Runner
		return reg.Do(func(d *hc595.Driver) error {
			return runner.Run(s, d)
		})
	},
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Run a running light over all outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sequence.Play(&reg, sequenceRounds)
	},
}

func init() {
	setCmd.AddCommand(setBitsCmd, setIntCmd, setBoolCmd, setOutputsCmd)
	rootCmd.AddCommand(setCmd, clearCmd, dutyCmd, playCmd, sequenceCmd)

	dutyCmd.Flags().DurationVar(&dutyHold, "hold", 0, "Keep the PWM signal running for this long (0 waits for a signal)")
	sequenceCmd.Flags().IntVar(&sequenceRounds, "rounds", 1, "Number of running light rounds")
}

func shift(f func(d *hc595.Driver) error) error {
	if err := reg.Do(f); err != nil {
		return err
	}
	fmt.Println(reg.State())
	return nil
}

func waitForSignal(timeout time.Duration) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	var timer <-chan time.Time
	if timeout > 0 {
		timer = time.After(timeout)
	}
	select {
	case sig := <-c:
		log.Println("Received signal", sig)
	case <-timer:
	}
}
