package usecase

import (
	"fmt"
	"strings"
)

const (
	systemPrefix = "[Sistema] "
	errorPrefix  = "[Erro] "
)

const (
	WelcomePrompt     = "Bem vindo! Informe seu nome:"
	NotInRoomReply    = systemPrefix + "Você não está em uma sala. Use /join <nome_sala> para entrar em uma."
	NothingToLeave    = systemPrefix + "Você não está em nenhuma sala para poder sair."
	DisconnectReply   = systemPrefix + "Desconectando do servidor..."
	NoActiveRooms     = systemPrefix + "Nenhuma sala ativa."
	JoinUsageReply    = errorPrefix + "Uso: /join <nome_sala>"
	SearchUsageReply  = errorPrefix + "Uso: /pesquisar <termo>"
	PrivateUsageReply = errorPrefix + "Formato inválido. Use @<usuario> <mensagem>"
	InvalidRoomReply  = errorPrefix + "Nome de sala inválido."
	SearchFailedReply = errorPrefix + "Não foi possível pesquisar o histórico."
)

var helpLines = []string{
	systemPrefix + "Comandos disponíveis:",
	"  /join <sala>        entra em uma sala (sai da atual, se houver)",
	"  /sair               sai da sala atual",
	"  @<usuario> <texto>  mensagem privada para alguém da sua sala",
	"  /pesquisar <termo>  pesquisa o histórico da sala atual",
	"  /usuarios           lista os usuários da sala atual",
	"  /salas              lista as salas ativas",
	"  /help               mostra esta ajuda",
	"  /desconectar        encerra a conexão",
}

func greetingReply(name string) string {
	return fmt.Sprintf("Bem vindo %s! Use /join <nome_sala> para entrar em uma sala.", name)
}

func joinedReply(room string) string {
	return systemPrefix + "Você entrou na sala " + room
}

func leftReply(room string) string {
	return systemPrefix + "Você saiu da sala " + room + "."
}

func recipientNotFoundReply(name string) string {
	return errorPrefix + "Usuário " + name + " não encontrado na sala."
}

func noHistoryReply(room string) string {
	return errorPrefix + "Nenhum histórico encontrado para a sala " + room + "."
}

func searchHeader(term, room string) string {
	return fmt.Sprintf("%sResultados da pesquisa por '%s' em %s:", systemPrefix, term, room)
}

func noMatchReply(term string) string {
	return fmt.Sprintf("%sNenhuma mensagem encontrada para '%s'.", systemPrefix, term)
}

func usersReply(room string, names []string) string {
	return fmt.Sprintf("%sUsuários na sala %s (%d): %s", systemPrefix, room, len(names), strings.Join(names, ", "))
}

func activeRoomsHeader(n int) string {
	return fmt.Sprintf("%sSalas ativas (%d):", systemPrefix, n)
}

func historyRoomsHeader(n int) string {
	return fmt.Sprintf("%sSalas com histórico sem usuários (%d):", systemPrefix, n)
}

func roomLine(name string, members int) string {
	if members == 1 {
		return fmt.Sprintf("  %s (1 usuário)", name)
	}
	return fmt.Sprintf("  %s (%d usuários)", name, members)
}
