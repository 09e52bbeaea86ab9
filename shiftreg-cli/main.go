package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/shiftreg/shiftreg"
	"github.com/spf13/cobra"
)

var (
	reg      = shiftreg.DefaultShiftReg
	sequence = shiftreg.DefaultSequence
)

var rootCmd = &cobra.Command{
	Use:   "shiftreg-cli",
	Short: "Drive a chain of 74HC595 shift registers",
	Long: `Shift values into a chain of daisy-chained 74HC595 shift registers
and control the brightness of their outputs through the output enable pin.

Examples:
  shiftreg-cli set bits 1010_0000           # Shift in 8 explicit bits
  shiftreg-cli set int 12 --chain 2         # Shift in the binary value of 12
  shiftreg-cli duty 70 --hold 10s           # Dim all outputs for 10 seconds
  shiftreg-cli play blink.595 --dummy       # Run a pattern script without hardware`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		golib.ConfigureLogging()
		return reg.Setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		reg.Close()
	},
}

func init() {
	reg.RegisterFlags()
	sequence.RegisterFlags("seq-")
	golib.RegisterLogFlags()
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		reg.Close()
		os.Exit(1)
	}
}
