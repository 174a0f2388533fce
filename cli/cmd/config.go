/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [new_display_name]",
	Short: "Gets or sets the display name.",
	Long: `Manages configuration for the salachat client.
If called without arguments, it displays the current display name.
If called with an argument, it stores it as the display name in the config file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("Display Name: %s\n", viper.GetString(displayNameKey))
			return
		}

		viper.Set(displayNameKey, args[0])
		if err := writeConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config: %v\n", err)
			return
		}
		fmt.Printf("Display name set to: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// writeConfig overwrites the loaded config file, creating it under $HOME
// when none was found.
func writeConfig() error {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || !errors.As(err, &notFound) {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(home, ".salachat.yaml"))
}
