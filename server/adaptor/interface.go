package adaptor

import "github.com/ponyo877/salachat/server/domain"

type Usecase interface {
	Welcome(session *domain.Session)
	Name(session *domain.Session, name string) error
	HandleLine(session *domain.Session, line string) bool
	Close(session *domain.Session)
}

// lineConn is one connection framed as newline-terminated lines.
type lineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}
