package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	closedColor = color.New(color.FgGreen, color.Bold)
	openColor   = color.New(color.FgYellow)
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the paddle contact states and exit",
	Long: `Read both paddle contacts once and print them. Useful for checking
board wiring and which lever is left before starting the daemon.`,
	Args: cobra.NoArgs,
	RunE: runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	board, err := loadBoard()
	if err != nil {
		return err
	}

	paddles, err := openPaddles(board.Chip, board.Paddles.Left, board.Paddles.Right)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer paddles.Close()

	left, right, err := paddles.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	printState(os.Stdout, left, right)
	return nil
}

func printState(w io.Writer, left, right bool) {
	fmt.Fprint(w, "left: ")
	contact(left).Fprint(w, stateString(left))
	fmt.Fprint(w, ", right: ")
	contact(right).Fprint(w, stateString(right))
	fmt.Fprintln(w)
}

func contact(closed bool) *color.Color {
	if closed {
		return closedColor
	}
	return openColor
}

func stateString(closed bool) string {
	if closed {
		return "CLOSED"
	}
	return "OPEN"
}
