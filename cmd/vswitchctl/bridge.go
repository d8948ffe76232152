package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type bridgeInfo struct {
	OwnBID       int64  `json:"own_bid"`
	RootBID      int64  `json:"root_bid"`
	RootPathCost uint32 `json:"root_path_cost"`
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Print the bridge identity and root path cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		var info bridgeInfo
		if err := fetchJSON("/bridge", &info); err != nil {
			return err
		}
		fmt.Printf("own_bid:        %d\n", info.OwnBID)
		fmt.Printf("root_bid:       %d\n", info.RootBID)
		fmt.Printf("root_path_cost: %d\n", info.RootPathCost)
		if info.OwnBID == info.RootBID {
			fmt.Println("role:           root")
		} else {
			fmt.Println("role:           non-root")
		}
		return nil
	},
}

type metricsInfo struct {
	FramesForwarded uint64 `json:"frames_forwarded"`
	FramesDropped   uint64 `json:"frames_dropped"`
	BPDUsSent       uint64 `json:"bpdus_sent"`
	BPDUsReceived   uint64 `json:"bpdus_received"`
	BPDUsDropped    uint64 `json:"bpdus_dropped"`
	STPTransitions  uint64 `json:"stp_transitions"`
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print frame/BPDU/STP counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		var m metricsInfo
		if err := fetchJSON("/metrics", &m); err != nil {
			return err
		}
		fmt.Printf("frames_forwarded: %d\n", m.FramesForwarded)
		fmt.Printf("frames_dropped:   %d\n", m.FramesDropped)
		fmt.Printf("bpdus_sent:       %d\n", m.BPDUsSent)
		fmt.Printf("bpdus_received:   %d\n", m.BPDUsReceived)
		fmt.Printf("bpdus_dropped:    %d\n", m.BPDUsDropped)
		fmt.Printf("stp_transitions:  %d\n", m.STPTransitions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(metricsCmd)
}
