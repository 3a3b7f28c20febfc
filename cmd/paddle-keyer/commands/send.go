package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sweeney/paddle-keyer/internal/clock"
	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// tailLimit bounds the wait for PTT to drop after sending.
const tailLimit = 5 * time.Second

var (
	sendWPM  int
	sendTX   int
	sendMode string
)

var sendCmd = &cobra.Command{
	Use:   "send TEXT...",
	Short: "Key text as Morse and exit",
	Long: `Send the arguments, joined by spaces, as automatic Morse on the selected
transmitter. Touching a paddle stops the send. Do not run this while the
daemon holds the same lines.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().IntVar(&sendWPM, "wpm", 0, "Speed in WPM (0 for the default)")
	sendCmd.Flags().IntVar(&sendTX, "tx", 1, "Transmitter number")
	sendCmd.Flags().StringVar(&sendMode, "sidetone", "", "Sidetone mode: off, on or paddle_only (empty for the default)")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	board, err := loadBoard()
	if err != nil {
		return err
	}

	clk := clock.NewMonotonic()
	st, err := openStation(board, clk)
	if err != nil {
		return fmt.Errorf("init hardware: %w", err)
	}
	defer st.Close()

	k := keyer.New(st.hw, board.KeyerTiming())
	k.Initialize()
	if err := configureSend(k, sendWPM, sendTX, sendMode); err != nil {
		return err
	}

	text := strings.Join(args, " ")
	n := sendText(k, clk, text)
	total := len([]rune(text))

	c := color.New(color.FgGreen)
	if n < total {
		c = color.New(color.FgYellow)
	}
	c.Fprintf(os.Stdout, "sent %d/%d\n", n, total)
	return nil
}

// configureSend applies the send flags. Zero values keep the defaults.
func configureSend(k *keyer.Keyer, wpm, tx int, sidetone string) error {
	if wpm != 0 && !k.SetSpeed(wpm) {
		t := k.Timing()
		return fmt.Errorf("wpm %d out of range (%d, %d)", wpm, t.WPMLow, t.WPMHigh)
	}
	if !k.SelectTX(tx) {
		return fmt.Errorf("no transmitter %d", tx)
	}
	if sidetone != "" {
		m, ok := keyer.ParseSidetoneMode(sidetone)
		if !ok {
			return fmt.Errorf("unknown sidetone mode %q", sidetone)
		}
		k.SetSidetoneMode(m)
	}
	return nil
}

// sendText keys text, then keeps ticking until the PTT tail has run out
// and releases the lines.
func sendText(k *keyer.Keyer, clk keyer.Clock, text string) int {
	n := k.Send(text)
	start := clk.Now()
	for k.Snapshot().PTTActive && clk.Now()-start < tailLimit {
		k.Tick()
		clk.Sleep(time.Millisecond)
	}
	k.Release()
	return n
}
