package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/paddle-keyer/internal/clock"
	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/mqtt"
	"github.com/sweeney/paddle-keyer/internal/status"
	"github.com/sweeney/paddle-keyer/internal/web"
)

const (
	// settingsWait bounds how long startup waits for the retained settings.
	settingsWait = 2 * time.Second

	commandQueue = 16
)

var (
	httpAddr          string
	tickInterval      time.Duration
	heartbeatInterval time.Duration
	statusInterval    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the keyer daemon",
	Long: `Run the keyer until SIGINT or SIGTERM.

On startup the retained settings are restored from the broker (waiting up
to 2s), a STARTUP event is published and the HTTP status page is served.
Settings changes are saved back to the broker as they happen. Commands
arrive as JSON on the paddle-keyer/command topic or by POST to /command:

  {"op":"speed","delta":2}      {"op":"wpm","value":25}
  {"op":"pitch","delta":-50}    {"op":"mode","mode":"iambic_a"}
  {"op":"send","text":"CQ"}     {"op":"ptt","on":true}
  {"op":"tx","on":false}`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	runCmd.Flags().DurationVar(&tickInterval, "tick", time.Millisecond, "Keyer tick interval")
	runCmd.Flags().DurationVar(&heartbeatInterval, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	runCmd.Flags().DurationVar(&statusInterval, "status-interval", 250*time.Millisecond, "Status page refresh interval")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if tickInterval <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}

	board, err := loadBoard()
	if err != nil {
		return err
	}

	st, err := openStation(board, clock.NewMonotonic())
	if err != nil {
		return fmt.Errorf("init hardware: %w", err)
	}
	defer st.Close()

	k := keyer.New(st.hw, board.KeyerTiming())
	k.Initialize()

	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	restoreSettings(k, publisher)
	k.BeepBoop()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickUs:       tickInterval.Microseconds(),
		HeartbeatMs:  heartbeatInterval.Milliseconds(),
		StatusMs:     statusInterval.Milliseconds(),
		Broker:       broker,
		HTTPAddr:     httpAddr,
		Board:        boardPath,
		Transmitters: describeTransmitters(board),
	})
	tracker.Update(k.Snapshot(), status.Counts{})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	if err := publisher.PublishSystem(statusEvent(tracker, time.Now(), "STARTUP", "")); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan mqtt.Command, commandQueue)
	go forwardCommands(ctx, publisher.Commands(), commands)

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, commands)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	s := k.Settings()
	log.Printf("started: tick=%v wpm=%d mode=%s broker=%s heartbeat=%v transmitters=%d",
		tickInterval, s.WPM, s.Mode, broker, heartbeatInterval, len(board.Transmitters))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		k:              k,
		publisher:      publisher,
		mqttStatus:     publisher,
		tracker:        tracker,
		heartbeat:      heartbeatInterval,
		statusInterval: statusInterval,
		now:            time.Now,
		tick:           ticker.C,
		commands:       commands,
		sig:            sigCh,
	}
	return l.run()
}

// restoreSettings applies the retained settings, if the broker has any.
func restoreSettings(k *keyer.Keyer, store mqtt.SettingsStore) {
	s, ok, err := store.LoadSettings(settingsWait)
	switch {
	case err != nil:
		log.Printf("load settings: %v (using defaults)", err)
	case !ok:
		log.Printf("no stored settings, using defaults")
	default:
		k.Restore(s)
		r := k.Settings()
		log.Printf("restored settings: wpm=%d mode=%s sidetone=%dHz tx=%d", r.WPM, r.Mode, r.SidetoneHz, r.TX)
	}
}

// forwardCommands copies broker commands onto the queue the loop and the
// HTTP handler share.
func forwardCommands(ctx context.Context, src <-chan mqtt.Command, dst chan<- mqtt.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-src:
			if !ok {
				return
			}
			select {
			case dst <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}
