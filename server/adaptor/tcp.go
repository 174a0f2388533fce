package adaptor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	writeTimeout  = 10 * time.Second
	maxLineLength = 64 * 1024
)

type tcpLineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func newTCPLineConn(conn net.Conn) *tcpLineConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &tcpLineConn{conn: conn, scanner: scanner}
}

// ReadLine returns the next line without its terminator. A final line with
// no newline is still delivered before io.EOF.
func (c *tcpLineConn) ReadLine() (string, error) {
	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *tcpLineConn) WriteLine(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *tcpLineConn) Close() error {
	return c.conn.Close()
}

func (c *tcpLineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// TCPAdaptor accepts plain line-oriented TCP connections and runs one
// session goroutine per connection.
type TCPAdaptor struct {
	uc         Usecase
	outboxSize int

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewTCPAdaptor(uc Usecase, outboxSize int) *TCPAdaptor {
	return &TCPAdaptor{
		uc:         uc,
		outboxSize: outboxSize,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Serve accepts until ctx is cancelled, then closes every open connection
// and waits for their sessions to finish the Closed transition.
func (a *TCPAdaptor) Serve(ctx context.Context, lis net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		lis.Close()
		a.closeConns()
	})
	defer stop()

	log.Info().Str("module", "transport.tcp").Str("addr", lis.Addr().String()).Msg("listening")
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				a.wg.Wait()
				return nil
			}
			log.Error().Err(err).Str("module", "transport.tcp").Msg("failed to accept connection")
			continue
		}

		if !a.track(conn) {
			conn.Close()
			continue
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			defer a.untrack(conn)
			serveSession(a.uc, newTCPLineConn(conn), a.outboxSize, "transport.tcp")
		}()
	}
}

func (a *TCPAdaptor) track(conn net.Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conns == nil {
		return false
	}
	a.conns[conn] = struct{}{}
	return true
}

func (a *TCPAdaptor) untrack(conn net.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.conns, conn)
}

func (a *TCPAdaptor) closeConns() {
	a.mu.Lock()
	conns := a.conns
	a.conns = nil
	a.mu.Unlock()

	for conn := range conns {
		conn.Close()
	}
	log.Info().Str("module", "transport.tcp").Int("connections", len(conns)).Msg("closed open connections")
}
