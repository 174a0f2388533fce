package domain

import "strings"

type CommandType int

const (
	CommandEmpty CommandType = iota
	CommandChat
	CommandJoin
	CommandLeave
	CommandPrivate
	CommandSearch
	CommandUsers
	CommandRooms
	CommandHelp
	CommandDisconnect
)

func (t CommandType) String() string {
	switch t {
	case CommandEmpty:
		return "empty"
	case CommandChat:
		return "chat"
	case CommandJoin:
		return "join"
	case CommandLeave:
		return "leave"
	case CommandPrivate:
		return "private"
	case CommandSearch:
		return "search"
	case CommandUsers:
		return "users"
	case CommandRooms:
		return "rooms"
	case CommandHelp:
		return "help"
	case CommandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Command is one classified protocol line. Arg holds the room, the search
// term or the private message recipient; Text holds chat text or the private
// message body.
type Command struct {
	Type CommandType
	Arg  string
	Text string
}

// ParseCommand classifies a single protocol line. It has no state and never
// fails: anything it does not recognise is chat text.
func ParseCommand(line string) Command {
	text := strings.TrimSpace(line)
	if text == "" {
		return Command{Type: CommandEmpty}
	}

	head, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)

	switch {
	case head == "/join":
		return Command{Type: CommandJoin, Arg: rest}
	case head == "/sair":
		return Command{Type: CommandLeave}
	case head == "/pesquisar":
		return Command{Type: CommandSearch, Arg: rest}
	case strings.EqualFold(head, "/help"):
		return Command{Type: CommandHelp}
	case strings.EqualFold(head, "/desconectar"):
		return Command{Type: CommandDisconnect}
	case strings.EqualFold(head, "/salas"):
		return Command{Type: CommandRooms}
	case strings.EqualFold(head, "/usuarios"),
		strings.EqualFold(head, "/usuários"),
		strings.EqualFold(head, "/online"):
		return Command{Type: CommandUsers}
	case strings.HasPrefix(head, "@"):
		return Command{Type: CommandPrivate, Arg: strings.TrimPrefix(head, "@"), Text: rest}
	}
	return Command{Type: CommandChat, Text: text}
}

func (c Command) IsValid() bool {
	switch c.Type {
	case CommandJoin, CommandSearch:
		return c.Arg != ""
	case CommandPrivate:
		return c.Arg != "" && c.Text != ""
	case CommandChat:
		return c.Text != ""
	case CommandEmpty:
		return false
	default:
		return true
	}
}

func (c Command) String() string {
	switch c.Type {
	case CommandJoin, CommandSearch:
		return c.Type.String() + ": " + c.Arg
	case CommandPrivate:
		return c.Type.String() + ": " + c.Arg + " <- " + c.Text
	case CommandChat:
		return c.Type.String() + ": " + c.Text
	default:
		return c.Type.String()
	}
}
