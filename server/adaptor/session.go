package adaptor

import (
	"errors"
	"io"
	"net"

	"github.com/ponyo877/salachat/server/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// serveSession runs one session from handshake to the Closed transition on
// the calling goroutine.
func serveSession(uc Usecase, conn lineConn, outboxSize int, module string) {
	sid := domain.NewSessionID()
	ob := newOutbox(sid, conn, outboxSize)
	session := domain.NewSession(sid, conn.RemoteAddr(), ob)
	logger := log.With().Str("module", module).Str("sid", sid).Str("remote", conn.RemoteAddr()).Logger()

	defer func() {
		uc.Close(session)
		if err := conn.Close(); err != nil && !isExpectedCloseError(err) {
			logger.Debug().Err(err).Msg("error closing connection")
		}
	}()

	logger.Info().Msg("connection accepted")
	uc.Welcome(session)

	name, err := conn.ReadLine()
	if err != nil {
		logReadError(&logger, err)
		return
	}
	if err := uc.Name(session, name); err != nil {
		logger.Error().Err(err).Msg("handshake failed")
		return
	}

	for {
		line, err := conn.ReadLine()
		if err != nil {
			logReadError(&logger, err)
			return
		}
		if !uc.HandleLine(session, line) {
			logger.Info().Msg("client disconnected")
			return
		}
	}
}

func logReadError(logger *zerolog.Logger, err error) {
	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		logger.Info().Err(err).Msg("connection closed")
		return
	}
	logger.Warn().Err(err).Msg("read error")
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)
}
