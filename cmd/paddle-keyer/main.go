// Command paddle-keyer runs an iambic/ultimatic CW keyer on a Raspberry Pi,
// persisting operator settings and publishing status over MQTT.
package main

import (
	"fmt"
	"os"

	"github.com/sweeney/paddle-keyer/cmd/paddle-keyer/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
