// Command camkit is a CLI for the camera management service: list devices
// and structures, watch the event feed and export cached event media.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
