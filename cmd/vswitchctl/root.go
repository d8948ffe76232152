// Command vswitchctl is a read-only client for a running vswitchd's debug
// API: it prints the port table, CAM, bridge identity, counters, or
// streams the live event feed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var addr string

var rootCmd = &cobra.Command{
	Use:   "vswitchctl",
	Short: "Inspect a running vswitchd instance's debug API",
	Long: `vswitchctl queries the read-only debug API a vswitchd instance exposes
when configs/settings.yaml sets debug_listen_addr. It never mutates the
switch's state; it only renders snapshots or the live event stream.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://127.0.0.1:8080", "base URL of the vswitchd debug API")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
