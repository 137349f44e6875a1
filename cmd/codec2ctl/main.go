// Command codec2ctl is a diagnostic CLI for the decode pipeline: probing a
// device's supported profiles and driving a Component end to end against a
// directory of pre-segmented bitstream access units. It never parses or
// demuxes a container; it only feeds files it is handed one at a time.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "codec2ctl",
	Short: "Diagnostic CLI for the V4L2 decode pipeline",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(runCmd)
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
