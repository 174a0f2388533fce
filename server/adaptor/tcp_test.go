package adaptor

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ponyo877/salachat/server/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tcpClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dialTCP(t *testing.T, addr string) *tcpClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, readTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &tcpClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *tcpClient) ReadLine() (string, error) {
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := c.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (c *tcpClient) WriteLine(line string) error {
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

type tcpServer struct {
	addr     string
	cancel   context.CancelFunc
	finished chan struct{}
	err      error
}

func startTCP(t *testing.T) *tcpServer {
	t.Helper()
	uc, _ := newTestUsecase(t)
	return serveTCP(t, uc)
}

// serveTCP runs a TCPAdaptor until the test ends. The cleanup waits for
// Serve, and with it every session, to return before later cleanups run.
func serveTCP(t *testing.T, uc Usecase) *tcpServer {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := &tcpServer{addr: lis.Addr().String(), cancel: cancel, finished: make(chan struct{})}
	a := NewTCPAdaptor(uc, 16)
	go func() {
		s.err = a.Serve(ctx, lis)
		close(s.finished)
	}()
	t.Cleanup(func() {
		cancel()
		<-s.finished
	})
	return s
}

func TestTCPAdaptor_ChatBetweenTwoClients(t *testing.T) {
	addr := startTCP(t).addr

	alice := dialTCP(t, addr)
	handshake(t, alice, "alice")
	require.NoError(t, alice.WriteLine("/join lobby"))
	expectLine(t, alice, "[Sistema] Você entrou na sala lobby")

	bob := dialTCP(t, addr)
	handshake(t, bob, "bob")
	require.NoError(t, bob.WriteLine("/join lobby"))
	expectLine(t, bob, "[Sistema] Você entrou na sala lobby")
	expectSuffix(t, bob, "Usuário alice entrou na sala.")
	expectSuffix(t, alice, "Usuário bob entrou na sala.")

	require.NoError(t, alice.WriteLine("hi"))
	expectSuffix(t, bob, "alice: hi")

	require.NoError(t, bob.WriteLine("@alice psiu"))
	expectSuffix(t, alice, "[Privado] bob: psiu")

	require.NoError(t, alice.WriteLine("/usuarios"))
	expectLine(t, alice, "[Sistema] Usuários na sala lobby (2): alice, bob")
}

func TestTCPAdaptor_DisconnectCommand(t *testing.T) {
	addr := startTCP(t).addr

	alice := dialTCP(t, addr)
	handshake(t, alice, "alice")
	require.NoError(t, alice.WriteLine("/join lobby"))
	expectLine(t, alice, "[Sistema] Você entrou na sala lobby")

	bob := dialTCP(t, addr)
	handshake(t, bob, "bob")
	require.NoError(t, bob.WriteLine("/join lobby"))
	expectLine(t, bob, "[Sistema] Você entrou na sala lobby")
	expectSuffix(t, bob, "Usuário alice entrou na sala.")
	expectSuffix(t, alice, "Usuário bob entrou na sala.")

	require.NoError(t, alice.WriteLine("/desconectar"))
	expectLine(t, alice, usecase.DisconnectReply)
	expectLine(t, alice, "[Sistema] Você saiu da sala lobby.")
	_, err := alice.ReadLine()
	assert.ErrorIs(t, err, io.EOF)

	expectSuffix(t, bob, "Usuário alice saiu da sala.")
}

func TestTCPAdaptor_AbruptDisconnectLeavesRoom(t *testing.T) {
	addr := startTCP(t).addr

	alice := dialTCP(t, addr)
	handshake(t, alice, "alice")
	require.NoError(t, alice.WriteLine("/join lobby"))
	expectLine(t, alice, "[Sistema] Você entrou na sala lobby")

	bob := dialTCP(t, addr)
	handshake(t, bob, "bob")
	require.NoError(t, bob.WriteLine("/join lobby"))
	expectLine(t, bob, "[Sistema] Você entrou na sala lobby")
	expectSuffix(t, bob, "Usuário alice entrou na sala.")

	alice.conn.Close()
	expectSuffix(t, bob, "Usuário alice saiu da sala.")

	require.NoError(t, bob.WriteLine("/salas"))
	expectLine(t, bob, "[Sistema] Salas ativas (1):")
	expectLine(t, bob, "  lobby (1 usuário)")
}

func TestTCPAdaptor_ServeStopsOnCancel(t *testing.T) {
	srv := startTCP(t)

	alice := dialTCP(t, srv.addr)
	handshake(t, alice, "alice")

	srv.cancel()
	select {
	case <-srv.finished:
		assert.NoError(t, srv.err)
	case <-time.After(readTimeout):
		t.Fatal("Serve did not return after cancel")
	}

	_, err := alice.ReadLine()
	assert.Error(t, err)
}

func TestTCPAdaptor_CancelRunsLeaveBeforeServeReturns(t *testing.T) {
	uc, history := newTestUsecase(t)
	srv := serveTCP(t, uc)

	alice := dialTCP(t, srv.addr)
	handshake(t, alice, "alice")
	require.NoError(t, alice.WriteLine("/join lobby"))
	expectLine(t, alice, "[Sistema] Você entrou na sala lobby")

	srv.cancel()
	<-srv.finished

	lines, err := history.Replay("lobby")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Usuário alice saiu da sala.")
}
