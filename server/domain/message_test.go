package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessage_String(t *testing.T) {
	at := time.Date(2024, time.March, 5, 9, 7, 42, 0, time.UTC)

	assert.Equal(t, "[05-03-2024 09:07] alice: oi", NewChatMessage("alice", "oi", at).String())
	assert.Equal(t, "[05-03-2024 09:07] [Privado] alice: segredo", NewPrivateMessage("alice", "segredo", at).String())
	assert.Equal(t, "[05-03-2024 09:07] Usuário alice entrou na sala.", NewJoinNotice("alice", at).String())
	assert.Equal(t, "[05-03-2024 09:07] Usuário alice saiu da sala.", NewLeaveNotice("alice", at).String())
}

func TestMessageKind_String(t *testing.T) {
	assert.Equal(t, "chat", MessageChat.String())
	assert.Equal(t, "notice", MessageNotice.String())
	assert.Equal(t, "private", MessagePrivate.String())
}
