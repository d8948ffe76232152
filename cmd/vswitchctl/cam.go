package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type camRow struct {
	MAC  string `json:"mac"`
	Port int    `json:"port"`
}

var camCmd = &cobra.Command{
	Use:   "cam",
	Short: "Print the learning table",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows []camRow
		if err := fetchJSON("/cam", &rows); err != nil {
			return err
		}
		fmt.Printf("%-18s %s\n", "MAC", "PORT")
		for _, r := range rows {
			fmt.Printf("%-18s %d\n", r.MAC, r.Port)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(camCmd)
}
