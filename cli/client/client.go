// Package client dials a salachat server over TCP or gRPC and exposes the
// connection as a stream of protocol lines.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/ponyo877/salachat/linerpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	TransportTCP  = "tcp"
	TransportGRPC = "grpc"

	dialTimeout = 10 * time.Second
)

// Markers the server puts on the lines the one-shot commands wait for.
const (
	DisconnectMarker   = "[Sistema] Desconectando do servidor..."
	SearchHeaderPrefix = "[Sistema] Resultados da pesquisa"
	NoMatchPrefix      = "[Sistema] Nenhuma mensagem encontrada"
	NoHistoryPrefix    = "[Erro] Nenhum histórico"
)

type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

func Dial(ctx context.Context, transport, addr string) (Conn, error) {
	switch transport {
	case TransportTCP, "":
		return dialTCP(ctx, addr)
	case TransportGRPC:
		return dialGRPC(ctx, addr)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dialTCP(ctx context.Context, addr string) (*tcpConn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	return &tcpConn{conn: conn, reader: newReader(conn)}, nil
}

func newReader(r io.Reader) *bufio.Reader {
	return bufio.NewReader(r)
}

func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if line != "" && err == io.EOF {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

type grpcConn struct {
	cc     *grpc.ClientConn
	stream linerpc.SessionClient
	cancel context.CancelFunc
}

func dialGRPC(ctx context.Context, addr string) (*grpcConn, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("did not connect to gRPC server: %w", err)
	}
	// ctx bounds the dial only; the stream lives until Close.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := linerpc.NewLineServiceClient(cc).Session(streamCtx)
	if err != nil {
		cancel()
		cc.Close()
		return nil, fmt.Errorf("failed to open session stream: %w", err)
	}
	return &grpcConn{cc: cc, stream: stream, cancel: cancel}, nil
}

func (c *grpcConn) ReadLine() (string, error) {
	in, err := c.stream.Recv()
	if err != nil {
		return "", err
	}
	return in.GetValue(), nil
}

func (c *grpcConn) WriteLine(line string) error {
	return c.stream.Send(wrapperspb.String(line))
}

func (c *grpcConn) Close() error {
	c.stream.CloseSend()
	c.cancel()
	return c.cc.Close()
}

// Handshake consumes the welcome prompt, sends the display name and returns
// the greeting the server answers with.
func Handshake(conn Conn, name string) (string, error) {
	if _, err := conn.ReadLine(); err != nil {
		return "", fmt.Errorf("failed to read welcome: %w", err)
	}
	if err := conn.WriteLine(name); err != nil {
		return "", fmt.Errorf("failed to send name: %w", err)
	}
	greeting, err := conn.ReadLine()
	if err != nil {
		return "", fmt.Errorf("failed to read greeting: %w", err)
	}
	return greeting, nil
}

// Run sends the given lines followed by /desconectar and returns every line
// received until the server confirms the disconnect or closes the stream.
func Run(conn Conn, lines ...string) ([]string, error) {
	for _, line := range append(lines, "/desconectar") {
		if err := conn.WriteLine(line); err != nil {
			return nil, fmt.Errorf("failed to send %q: %w", line, err)
		}
	}
	var out []string
	for {
		line, err := conn.ReadLine()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if line == DisconnectMarker {
			return out, nil
		}
		out = append(out, line)
	}
}
