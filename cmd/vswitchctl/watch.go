package main

import (
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream STP and forwarding events as they occur",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.Replace(addr, "http://", "ws://", 1)
		url = strings.Replace(url, "https://", "wss://", 1)
		url += "/events"

		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", url, err)
		}
		defer conn.Close()

		for {
			var ev map[string]interface{}
			if err := conn.ReadJSON(&ev); err != nil {
				return err
			}
			fmt.Printf("%v %v\n", ev["time"], ev["kind"])
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
