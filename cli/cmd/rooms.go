/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ponyo877/salachat/cli/client"
	"github.com/spf13/cobra"
)

// roomsCmd represents the rooms command
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Lists the active rooms and their member counts.",
	Long:  `Connects to the server, runs /salas once and prints the reply.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		conn, _, err := connect(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
			return
		}
		defer conn.Close()

		lines, err := client.Run(conn, "/salas")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing rooms: %v\n", err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}
