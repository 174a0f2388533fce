package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResults(t *testing.T) {
	lines := []string{
		"[Sistema] Você entrou na sala lobby",
		"[05-03-2024 09:08] alice: oi",
		"[Sistema] Resultados da pesquisa por 'oi' em lobby:",
		"[05-03-2024 09:08] alice: oi",
	}
	got, err := searchResults(lines)
	require.NoError(t, err)
	assert.Equal(t, lines[3:], got)

	got, err = searchResults([]string{"[Sistema] Nenhuma mensagem encontrada para 'x'."})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = searchResults([]string{"[Erro] Nenhum histórico encontrado para a sala x."})
	assert.Error(t, err)
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "[red][Erro[] falhou[white]", colorize("[Erro] falhou"))
	assert.Equal(t, "[green][Sistema[] ok[white]", colorize("[Sistema] ok"))
	assert.Equal(t, "[fuchsia][05-03-2024 09:08[] [Privado[] bob: oi[white]", colorize("[05-03-2024 09:08] [Privado] bob: oi"))
	assert.Equal(t, "alice: oi", colorize("alice: oi"))
}
