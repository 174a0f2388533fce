package adaptor

import (
	"errors"
	"sync"
	"time"

	"github.com/ponyo877/salachat/server/domain"
	"github.com/rs/zerolog/log"
)

var ErrOutboxFull = errors.New("outbox full")

const (
	enqueueTimeout = 2 * time.Second
	flushTimeout   = 5 * time.Second
)

type lineWriter interface {
	WriteLine(line string) error
}

// outbox is the domain.Sink of a connection. Lines are queued and written
// by a single pump goroutine, so a slow peer only stalls its own queue.
type outbox struct {
	sid   string
	w     lineWriter
	queue chan string
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newOutbox(sid string, w lineWriter, size int) *outbox {
	if size <= 0 {
		size = domain.DefaultOutboxSize
	}
	o := &outbox{
		sid:   sid,
		w:     w,
		queue: make(chan string, size),
		done:  make(chan struct{}),
	}
	go o.pump()
	return o
}

func (o *outbox) pump() {
	defer close(o.done)

	failed := false
	for line := range o.queue {
		if failed {
			continue
		}
		if err := o.w.WriteLine(line); err != nil {
			failed = true
			log.Debug().Err(err).Str("module", "transport.outbox").Str("sid", o.sid).Msg("write failed, discarding remaining lines")
		}
	}
}

func (o *outbox) Send(line string) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return domain.ErrSinkClosed
	}
	select {
	case o.queue <- line:
		return nil
	default:
	}

	timer := time.NewTimer(enqueueTimeout)
	defer timer.Stop()
	select {
	case o.queue <- line:
		return nil
	case <-timer.C:
		return ErrOutboxFull
	}
}

// Close stops accepting lines and waits, bounded, for queued lines to be written.
func (o *outbox) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	select {
	case <-o.done:
	case <-time.After(flushTimeout):
		log.Warn().Str("module", "transport.outbox").Str("sid", o.sid).Msg("flush timed out")
	}
	return nil
}
