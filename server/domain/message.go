package domain

import "time"

// TimestampLayout renders dd-mm-yyyy HH:MM, the resolution history lines are kept at.
const TimestampLayout = "02-01-2006 15:04"

type MessageKind int

const (
	MessageChat MessageKind = iota
	MessageNotice
	MessagePrivate
)

func (k MessageKind) String() string {
	switch k {
	case MessageChat:
		return "chat"
	case MessageNotice:
		return "notice"
	case MessagePrivate:
		return "private"
	default:
		return "unknown"
	}
}

type Message struct {
	Kind      MessageKind
	Sender    string
	Body      string
	CreatedAt time.Time
}

func NewChatMessage(sender, body string, createdAt time.Time) Message {
	return Message{
		Kind:      MessageChat,
		Sender:    sender,
		Body:      body,
		CreatedAt: createdAt,
	}
}

func NewNotice(body string, createdAt time.Time) Message {
	return Message{
		Kind:      MessageNotice,
		Body:      body,
		CreatedAt: createdAt,
	}
}

func NewPrivateMessage(sender, body string, createdAt time.Time) Message {
	return Message{
		Kind:      MessagePrivate,
		Sender:    sender,
		Body:      body,
		CreatedAt: createdAt,
	}
}

func NewJoinNotice(name string, createdAt time.Time) Message {
	return NewNotice("Usuário "+name+" entrou na sala.", createdAt)
}

func NewLeaveNotice(name string, createdAt time.Time) Message {
	return NewNotice("Usuário "+name+" saiu da sala.", createdAt)
}

// String returns the wire and history form of the message.
// Notices carry no sender field.
func (m Message) String() string {
	stamp := "[" + m.CreatedAt.Format(TimestampLayout) + "] "
	switch m.Kind {
	case MessageNotice:
		return stamp + m.Body
	case MessagePrivate:
		return stamp + "[Privado] " + m.Sender + ": " + m.Body
	default:
		return stamp + m.Sender + ": " + m.Body
	}
}
