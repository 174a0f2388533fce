/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ponyo877/salachat/cli/client"
	"github.com/spf13/cobra"
)

// grepCmd represents the grep command
var grepCmd = &cobra.Command{
	Use:   "grep <term> <room>",
	Short: "Searches the history of a room.",
	Long: `Joins the room, runs /pesquisar with the term and prints the matching
history lines. The search goes through a regular join, so members of the
room see a join and a leave notice for you and both notices are appended to
the room's history.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		term, room := args[0], args[1]

		conn, _, err := connect(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
			return
		}
		defer conn.Close()

		lines, err := client.Run(conn, "/join "+room, "/pesquisar "+term)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error searching '%s' in %s: %v\n", term, room, err)
			return
		}
		matches, err := searchResults(lines)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		for _, line := range matches {
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(grepCmd)
}

// searchResults drops the join replay and returns only the lines that
// follow the search header. A no-match reply yields no lines.
func searchResults(lines []string) ([]string, error) {
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, client.SearchHeaderPrefix):
			return lines[i+1:], nil
		case strings.HasPrefix(line, client.NoMatchPrefix):
			return nil, nil
		case strings.HasPrefix(line, client.NoHistoryPrefix):
			return nil, fmt.Errorf("%s", line)
		}
	}
	return nil, nil
}
