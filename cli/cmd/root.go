/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-shellwords"
	"github.com/ponyo877/salachat/cli/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	serverAddressKey = "server_address"
	grpcAddressKey   = "grpc_address"
	transportKey     = "transport"
	displayNameKey   = "display_name"

	defaultDialTimeout = 10 * time.Second
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salachat",
	Short: "Client for the salachat room server.",
	Long: `Connects to a salachat server over TCP or gRPC.

Use "chat" for the interactive room view, or "rooms" and "grep" for
one-shot queries. Run without arguments for an interactive shell.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// one‑shot
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// REPL
	fmt.Println("entering interactive mode, type 'exit' to quit")
	for {
		line := strings.TrimSpace(prompt.Input("❯❯❯ ", completer, prompt.OptionTitle("salachat")))
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
			continue
		}
		rootCmd.SetArgs(args)
		rootCmd.Execute()
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	suggests := []prompt.Suggest{{Text: "exit", Description: "Leave the interactive shell"}}
	for _, c := range rootCmd.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		suggests = append(suggests, prompt.Suggest{Text: c.Name(), Description: c.Short})
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.salachat.yaml)")
	rootCmd.PersistentFlags().String("server", "localhost:5000", "TCP address of the salachat server")
	rootCmd.PersistentFlags().String("grpc-server", "localhost:50051", "gRPC address of the salachat server")
	rootCmd.PersistentFlags().String("transport", client.TransportTCP, "transport to use: tcp or grpc")
	rootCmd.PersistentFlags().StringP("name", "n", "", "display name (defaults to display_name in config)")

	viper.BindPFlag(serverAddressKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(grpcAddressKey, rootCmd.PersistentFlags().Lookup("grpc-server"))
	viper.BindPFlag(transportKey, rootCmd.PersistentFlags().Lookup("transport"))
	viper.BindPFlag(displayNameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.SetDefault(serverAddressKey, "localhost:5000")
	viper.SetDefault(grpcAddressKey, "localhost:50051")
	viper.SetDefault(transportKey, client.TransportTCP)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".salachat")
	}

	viper.SetEnvPrefix("salachat")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

func serverAddress() string {
	if viper.GetString(transportKey) == client.TransportGRPC {
		return viper.GetString(grpcAddressKey)
	}
	return viper.GetString(serverAddressKey)
}

func displayName() (string, error) {
	name := viper.GetString(displayNameKey)
	if name == "" {
		return "", errors.New("display name is not set, use 'config <name>' or the -n flag")
	}
	return name, nil
}

// connect dials the configured server and completes the naming handshake.
func connect(ctx context.Context) (client.Conn, string, error) {
	name, err := displayName()
	if err != nil {
		return nil, "", err
	}
	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	conn, err := client.Dial(dialCtx, viper.GetString(transportKey), serverAddress())
	if err != nil {
		return nil, "", err
	}
	greeting, err := client.Handshake(conn, name)
	if err != nil {
		conn.Close()
		return nil, "", err
	}
	return conn, greeting, nil
}
