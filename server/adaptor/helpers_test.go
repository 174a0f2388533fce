package adaptor

import (
	"testing"
	"time"

	"github.com/ponyo877/salachat/server/domain"
	"github.com/ponyo877/salachat/server/repository"
	"github.com/ponyo877/salachat/server/usecase"
	"github.com/stretchr/testify/require"
)

const readTimeout = 5 * time.Second

// newTestUsecase registers the history Close cleanup first, so transport
// cleanups registered afterwards run, and drain their sessions, before it.
func newTestUsecase(t *testing.T) (*usecase.SessionUsecase, *repository.FileHistory) {
	t.Helper()
	history, err := repository.NewFileHistory(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	registry := domain.NewRoomRegistry()
	return usecase.NewSessionUsecase(registry, domain.NewUserDirectory(registry), history), history
}

// lineClient is the test side of a connection.
type lineClient interface {
	ReadLine() (string, error)
	WriteLine(line string) error
}

func expectLine(t *testing.T, c lineClient, want string) {
	t.Helper()
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := c.ReadLine()
		ch <- result{line, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		require.Equal(t, want, r.line)
	case <-time.After(readTimeout):
		t.Fatalf("timed out waiting for %q", want)
	}
}

// expectSuffix matches lines that carry a timestamp prefix.
func expectSuffix(t *testing.T, c lineClient, suffix string) {
	t.Helper()
	line, err := c.ReadLine()
	require.NoError(t, err)
	require.Regexp(t, `^\[\d{2}-\d{2}-\d{4} \d{2}:\d{2}\] `, line)
	require.Equal(t, suffix, line[len("[05-03-2024 09:07] "):])
}

func handshake(t *testing.T, c lineClient, name string) {
	t.Helper()
	expectLine(t, c, usecase.WelcomePrompt)
	require.NoError(t, c.WriteLine(name))
	expectLine(t, c, "Bem vindo "+name+"! Use /join <nome_sala> para entrar em uma sala.")
}
