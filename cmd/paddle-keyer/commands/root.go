// Package commands implements the paddle-keyer CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sweeney/paddle-keyer/internal/config"
)

var (
	version string
	commit  string
	date    string
)

var (
	boardPath string
	broker    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paddle-keyer",
	Short: "CW paddle keyer for GPIO and serial-keyed rigs",
	Long: `paddle-keyer turns two paddle contacts into timed Morse elements on a
transmitter key line, with PTT sequencing, sidetone and iambic A/B,
ultimatic, bug and straight-key modes.

Operator settings are stored as a retained MQTT message and restored on
startup. Pin wiring comes from a YAML board file (--board); without one
the stock single-transmitter board is used.`,
	SilenceUsage: true,
	Version:      version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	// Force color output even when not connected to TTY.
	// Users can disable with NO_COLOR environment variable.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}

	rootCmd.PersistentFlags().StringVar(&boardPath, "board", "", "Board file (empty for the stock board)")
	rootCmd.PersistentFlags().StringVar(&broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
}

// loadBoard reads --board, or returns the stock board when it is unset.
func loadBoard() (*config.Board, error) {
	if boardPath == "" {
		return config.Default(), nil
	}
	return config.Load(boardPath)
}
