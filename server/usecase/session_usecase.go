package usecase

import (
	"errors"
	"time"

	"github.com/ponyo877/salachat/server/domain"
	"github.com/rs/zerolog/log"
)

// SessionUsecase drives the per-connection state machine against the shared
// room registry, user directory and history store. All methods for a given
// session are expected to run on that session's own goroutine.
type SessionUsecase struct {
	rooms            domain.RoomService
	directory        domain.Directory
	history          HistoryRepository
	now              func() time.Time
	listHistoryRooms bool
}

type Option func(*SessionUsecase)

func WithClock(now func() time.Time) Option {
	return func(u *SessionUsecase) {
		u.now = now
	}
}

// WithHistoryRoomListing makes /salas also list rooms that only exist as a history log.
func WithHistoryRoomListing(enabled bool) Option {
	return func(u *SessionUsecase) {
		u.listHistoryRooms = enabled
	}
}

func NewSessionUsecase(rooms domain.RoomService, directory domain.Directory, history HistoryRepository, opts ...Option) *SessionUsecase {
	u := &SessionUsecase{
		rooms:     rooms,
		directory: directory,
		history:   history,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Welcome sends the prompt that opens the naming handshake.
func (u *SessionUsecase) Welcome(session *domain.Session) {
	u.reply(session, WelcomePrompt)
}

// Name completes the handshake with the first line the client sent.
func (u *SessionUsecase) Name(session *domain.Session, name string) error {
	if err := session.SetName(name); err != nil {
		return err
	}
	u.directory.Register(session, name)
	u.reply(session, greetingReply(name))
	log.Info().Str("module", "core.session").Str("sid", session.ID).Str("user", name).Str("remote", session.Remote).
		Int("online", u.directory.Count()).Msg("session named")
	return nil
}

// HandleLine classifies one line and runs the matching operation. It
// returns false once the session asked to disconnect.
func (u *SessionUsecase) HandleLine(session *domain.Session, line string) bool {
	return u.Dispatch(session, domain.ParseCommand(line))
}

func (u *SessionUsecase) Dispatch(session *domain.Session, cmd domain.Command) bool {
	switch cmd.Type {
	case domain.CommandEmpty:
	case domain.CommandJoin:
		if !cmd.IsValid() {
			u.reply(session, JoinUsageReply)
			break
		}
		u.Join(session, cmd.Arg)
	case domain.CommandLeave:
		u.Leave(session)
	case domain.CommandPrivate:
		u.Private(session, cmd)
	case domain.CommandSearch:
		u.Search(session, cmd.Arg)
	case domain.CommandUsers:
		u.Users(session)
	case domain.CommandRooms:
		u.Rooms(session)
	case domain.CommandHelp:
		u.Help(session)
	case domain.CommandDisconnect:
		u.reply(session, DisconnectReply)
		return false
	default:
		u.Chat(session, cmd.Text)
	}
	return true
}

// Join moves the session into room, leaving its current room first.
func (u *SessionUsecase) Join(session *domain.Session, room string) {
	if err := domain.ValidateRoomName(room); err != nil {
		u.reply(session, InvalidRoomReply)
		return
	}
	if session.InRoom() {
		u.Leave(session)
	}

	// Membership starts before the replay, so a line broadcast in between can
	// reach the joiner live and again in the replay. That duplicate is accepted.
	session.SetRoom(room)
	u.rooms.Join(room, session)
	if err := u.history.Ensure(room); err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("room", room).Msg("failed to create history log")
	}
	u.reply(session, joinedReply(room))

	lines, err := u.history.Replay(room)
	if err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("room", room).Msg("failed to replay history")
	}
	for _, line := range lines {
		u.reply(session, line)
	}

	notice := domain.NewJoinNotice(session.Name(), u.now()).String()
	u.broadcast(session, room, notice)
	u.persist(room, notice)
}

// Leave runs the leave sequence; outside a room it only replies.
func (u *SessionUsecase) Leave(session *domain.Session) {
	room := session.Room()
	if room == "" {
		u.reply(session, NothingToLeave)
		return
	}

	notice := domain.NewLeaveNotice(session.Name(), u.now()).String()
	u.broadcast(session, room, notice)
	u.persist(room, notice)
	u.reply(session, leftReply(room))
	u.rooms.Leave(room, session)
	session.ClearRoom()
}

func (u *SessionUsecase) Chat(session *domain.Session, text string) {
	room := session.Room()
	if room == "" {
		u.reply(session, NotInRoomReply)
		return
	}

	line := domain.NewChatMessage(session.Name(), text, u.now()).String()
	u.broadcast(session, room, line)
	u.persist(room, line)
}

// Private delivers a message to one member of the sender's room. It is
// neither broadcast nor persisted.
func (u *SessionUsecase) Private(session *domain.Session, cmd domain.Command) {
	room := session.Room()
	if room == "" {
		u.reply(session, NotInRoomReply)
		return
	}
	if !cmd.IsValid() {
		u.reply(session, PrivateUsageReply)
		return
	}

	recipient, ok := u.directory.LookupByName(room, cmd.Arg)
	if !ok {
		u.reply(session, recipientNotFoundReply(cmd.Arg))
		return
	}
	line := domain.NewPrivateMessage(session.Name(), cmd.Text, u.now()).String()
	if err := recipient.Send(line); err != nil && !errors.Is(err, domain.ErrSinkClosed) {
		log.Warn().Err(err).Str("module", "core.session").Str("sid", recipient.ID).Msg("private message dropped")
	}
}

func (u *SessionUsecase) Search(session *domain.Session, term string) {
	room := session.Room()
	if room == "" {
		u.reply(session, NotInRoomReply)
		return
	}
	if term == "" {
		u.reply(session, SearchUsageReply)
		return
	}

	lines, err := u.history.Search(room, term)
	if errors.Is(err, ErrNoHistory) {
		u.reply(session, noHistoryReply(room))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("room", room).Msg("failed to search history")
		u.reply(session, SearchFailedReply)
		return
	}
	if len(lines) == 0 {
		u.reply(session, noMatchReply(term))
		return
	}
	u.reply(session, searchHeader(term, room))
	for _, line := range lines {
		u.reply(session, line)
	}
}

func (u *SessionUsecase) Users(session *domain.Session) {
	room := session.Room()
	if room == "" {
		u.reply(session, NotInRoomReply)
		return
	}
	u.reply(session, usersReply(room, u.directory.NamesIn(room)))
}

// Rooms lists active rooms. Rooms known only from history are listed in a
// separate section when enabled, never mixed with the active ones.
func (u *SessionUsecase) Rooms(session *domain.Session) {
	active := u.rooms.ActiveRooms()
	if len(active) == 0 {
		u.reply(session, NoActiveRooms)
	} else {
		u.reply(session, activeRoomsHeader(len(active)))
		for _, r := range active {
			u.reply(session, roomLine(r.Name, r.Members))
		}
	}

	if !u.listHistoryRooms {
		return
	}
	known, err := u.history.Rooms()
	if err != nil {
		log.Error().Err(err).Str("module", "core.session").Msg("failed to list history rooms")
		return
	}
	idle := make([]string, 0, len(known))
	for _, name := range known {
		if !u.rooms.IsActive(name) {
			idle = append(idle, name)
		}
	}
	u.reply(session, historyRoomsHeader(len(idle)))
	for _, name := range idle {
		u.reply(session, "  "+name)
	}
}

func (u *SessionUsecase) Help(session *domain.Session) {
	for _, line := range helpLines {
		u.reply(session, line)
	}
}

// Close is the terminal transition: leave the current room, drop the
// directory entry and close the sink.
func (u *SessionUsecase) Close(session *domain.Session) {
	if session.State() == domain.StateClosed {
		return
	}
	if session.InRoom() {
		u.Leave(session)
	}
	u.directory.Unregister(session)
	if err := session.Close(); err != nil {
		log.Debug().Err(err).Str("module", "core.session").Str("sid", session.ID).Msg("error closing sink")
	}
	log.Info().Str("module", "core.session").Stringer("session", session).
		Dur("connected_for", time.Since(session.ConnectedAt)).Int("online", u.directory.Count()).Msg("session closed")
}

func (u *SessionUsecase) broadcast(sender *domain.Session, room, line string) {
	for _, member := range u.rooms.MembersOf(room) {
		if member.ID == sender.ID {
			continue
		}
		if err := member.Send(line); err != nil && !errors.Is(err, domain.ErrSinkClosed) {
			log.Warn().Err(err).Str("module", "core.session").Str("room", room).Str("sid", member.ID).Msg("broadcast dropped")
		}
	}
}

func (u *SessionUsecase) persist(room, line string) {
	if err := u.history.Append(room, line); err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("room", room).Msg("failed to persist history line")
	}
}

func (u *SessionUsecase) reply(session *domain.Session, line string) {
	if err := session.Send(line); err != nil && !errors.Is(err, domain.ErrSinkClosed) {
		log.Warn().Err(err).Str("module", "core.session").Str("sid", session.ID).Msg("reply dropped")
	}
}
