package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func fetchJSON(path string, out interface{}) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(addr + path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type portRow struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	VLAN  int    `json:"vlan,omitempty"`
	State string `json:"stp_state"`
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Print the port table",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows []portRow
		if err := fetchJSON("/ports", &rows); err != nil {
			return err
		}
		fmt.Printf("%-4s %-12s %-8s %-6s %s\n", "IDX", "NAME", "KIND", "VLAN", "STATE")
		for _, r := range rows {
			fmt.Printf("%-4d %-12s %-8s %-6d %s\n", r.Index, r.Name, r.Kind, r.VLAN, r.State)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
