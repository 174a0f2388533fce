package adaptor

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/ponyo877/salachat/linerpc"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type recvResult struct {
	line string
	err  error
}

// grpcLineConn reads frames on its own goroutine so a session blocked in
// ReadLine can be ended by cancelling ctx without ending the stream.
type grpcLineConn struct {
	ctx      context.Context
	stream   linerpc.SessionServer
	remote   string
	incoming chan recvResult
}

func newGRPCLineConn(ctx context.Context, stream linerpc.SessionServer) *grpcLineConn {
	remote := "unknown"
	if p, ok := peer.FromContext(stream.Context()); ok && p.Addr != nil {
		remote = p.Addr.String()
	}
	c := &grpcLineConn{
		ctx:      ctx,
		stream:   stream,
		remote:   remote,
		incoming: make(chan recvResult),
	}
	go c.receive()
	return c
}

// receive exits once Recv fails, which at the latest happens when the
// handler returns and the stream context is cancelled.
func (c *grpcLineConn) receive() {
	for {
		in, err := c.stream.Recv()
		select {
		case c.incoming <- recvResult{line: in.GetValue(), err: err}:
		case <-c.stream.Context().Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *grpcLineConn) ReadLine() (string, error) {
	select {
	case r := <-c.incoming:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) || status.Code(r.err) == codes.Canceled {
				return "", io.EOF
			}
			return "", r.err
		}
		return r.line, nil
	case <-c.ctx.Done():
		return "", net.ErrClosed
	}
}

func (c *grpcLineConn) WriteLine(line string) error {
	return c.stream.Send(wrapperspb.String(line))
}

// Close is a no-op: the stream ends when the handler returns.
func (c *grpcLineConn) Close() error {
	return nil
}

func (c *grpcLineConn) RemoteAddr() string {
	return c.remote
}

// GRPCAdaptor serves the LineService: each bidi stream is one session
// speaking the same line protocol as the TCP transport.
type GRPCAdaptor struct {
	uc         Usecase
	outboxSize int

	mu       sync.Mutex
	sessions map[*grpcLineConn]context.CancelFunc
	stopped  bool
	wg       sync.WaitGroup
}

func NewGRPCAdaptor(uc Usecase, outboxSize int) *GRPCAdaptor {
	return &GRPCAdaptor{
		uc:         uc,
		outboxSize: outboxSize,
		sessions:   make(map[*grpcLineConn]context.CancelFunc),
	}
}

func (a *GRPCAdaptor) Session(stream linerpc.SessionServer) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	conn := newGRPCLineConn(ctx, stream)
	if !a.track(conn, cancel) {
		return status.Error(codes.Unavailable, "server is shutting down")
	}
	defer a.untrack(conn)

	serveSession(a.uc, conn, a.outboxSize, "transport.grpc")
	return nil
}

// Shutdown refuses new streams, ends the read loop of every open session and
// waits until each has finished the Closed transition or ctx expires.
func (a *GRPCAdaptor) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.stopped = true
	for _, cancel := range a.sessions {
		cancel()
	}
	open := len(a.sessions)
	a.mu.Unlock()
	log.Info().Str("module", "transport.grpc").Int("sessions", open).Msg("closing open sessions")

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *GRPCAdaptor) track(conn *grpcLineConn, cancel context.CancelFunc) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.sessions[conn] = cancel
	a.wg.Add(1)
	return true
}

func (a *GRPCAdaptor) untrack(conn *grpcLineConn) {
	a.mu.Lock()
	delete(a.sessions, conn)
	a.mu.Unlock()
	a.wg.Done()
}
