/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// idCmd represents the id command
var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Prints user configuration information.",
	Long:  `Prints the display name and the server this client connects to.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DisplayName: %s\n", viper.GetString(displayNameKey))
		fmt.Printf("Server: %s (%s)\n", serverAddress(), viper.GetString(transportKey))
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
