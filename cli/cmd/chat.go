package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/ponyo877/salachat/cli/client"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const maxInputLength = 1024

var chatCmd = &cobra.Command{
	Use:   "chat [room]",
	Short: "Starts a chat session in a tview-based interface",
	Long: `Connects to the server and opens a tview-based chat view.
If a room is given it is joined right after the handshake. Every server
command (/join, /sair, /salas, /usuarios, /pesquisar, @user, /help) can be
typed at the bottom. Ctrl+C disconnects.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		conn, greeting, err := connect(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
			return
		}
		defer conn.Close()

		room := ""
		if len(args) == 1 {
			room = args[0]
		}
		if err := runChatUITview(conn, viper.GetString(displayNameKey), greeting, room); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// colorize picks a tview color tag from the line prefix the server uses.
func colorize(line string) string {
	escaped := tview.Escape(line)
	switch {
	case strings.HasPrefix(line, "[Erro]"):
		return "[red]" + escaped + "[white]"
	case strings.HasPrefix(line, "[Sistema]"):
		return "[green]" + escaped + "[white]"
	case strings.Contains(line, "] [Privado] "):
		return "[fuchsia]" + escaped + "[white]"
	default:
		return escaped
	}
}

func runChatUITview(conn client.Conn, userName, greeting, room string) error {
	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()

	inputField := tview.NewInputField().
		SetLabel(userName + " ❯❯ ").
		SetFieldWidth(0).
		SetAcceptanceFunc(tview.InputFieldMaxLength(maxInputLength))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	fmt.Fprintln(textView, colorize(greeting))
	fmt.Fprintln(textView, "[yellow](Ctrl+C to exit)[white]")
	if room != "" {
		if err := conn.WriteLine("/join " + room); err != nil {
			return fmt.Errorf("failed to join %s: %w", room, err)
		}
	}

	go func() {
		for {
			line, err := conn.ReadLine()
			if err == io.EOF {
				app.QueueUpdateDraw(func() {
					fmt.Fprintln(textView, "[red]Connection closed by server.[white]")
				})
				return
			}
			if err != nil {
				app.QueueUpdateDraw(func() {
					fmt.Fprintf(textView, "[red]Error receiving message: %v[white]\n", tview.Escape(err.Error()))
				})
				return
			}
			app.QueueUpdateDraw(func() {
				fmt.Fprintln(textView, colorize(line))
				textView.ScrollToEnd()
			})
			if line == client.DisconnectMarker {
				app.Stop()
				return
			}
		}
	}()

	inputField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(inputField.GetText())
		if text == "" {
			return
		}
		if err := conn.WriteLine(text); err != nil {
			fmt.Fprintf(textView, "[red]Failed to send message: %v[white]\n", tview.Escape(err.Error()))
		} else if !strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "@") {
			// the server does not echo chat lines back to their sender
			fmt.Fprintf(textView, "[blue]%s[white]: %s\n", tview.Escape(userName), tview.Escape(text))
		}
		inputField.SetText("")
		textView.ScrollToEnd()
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			conn.WriteLine("/desconectar")
			app.Stop()
			return nil
		}
		return event
	})

	return app.Run()
}
