// Package presence implements the room session protocol: join and rejoin with
// user de-duplication, online/offline tracking, and the editor/chat events that
// are relayed between the members of a room.
//
// Every inbound event goes through Coordinator.Handle, which persists the change
// and returns an Effect describing what the transport must broadcast. The
// coordinator never talks to connections itself.
package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/thereayou/codecollab/internal/database"
	"github.com/thereayou/codecollab/internal/models"
	"github.com/thereayou/codecollab/internal/session"
	"github.com/thereayou/codecollab/internal/snippet"
)

const (
	minNameLength = 2
	maxNameLength = 50

	reasonMissingFields    = "Missing required fields"
	reasonNameLength       = "Username must be between 2 and 50 characters"
	reasonIdentityMismatch = "User id does not match identity token"
)

// Store is the persistence the coordinator needs. Reads and writes are not
// isolated from each other: two joins racing on one room can lose an update.
type Store interface {
	FindRoom(ctx context.Context, roomID string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	SaveRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, roomID string, fields database.RoomFields) error
}

type Coordinator struct {
	store    Store
	sessions *session.Registry
	snippets snippet.Provider
	maxUsers int
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Coordinator)

// WithMaxUsers overrides the roster cap.
func WithMaxUsers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxUsers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func NewCoordinator(store Store, sessions *session.Registry, snippets snippet.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		sessions: sessions,
		snippets: snippets,
		maxUsers: models.MaxParticipants,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "presence")
	return c
}

// Handle dispatches one inbound event from connectionID.
// The returned error is for logging; anything the client must see is already in the Effect.
func (c *Coordinator) Handle(ctx context.Context, connectionID string, ev Event) (Effect, error) {
	switch ev.Name {
	case EventJoinRoom:
		var req JoinRequest
		if err := decode(ev, &req); err != nil {
			verr := &ValidationError{Reason: reasonMissingFields}
			return joinFailure(verr), verr
		}
		return c.Join(ctx, connectionID, ev.Identity, req)

	case EventCodeChange:
		var p codeChangePayload
		if err := decode(ev, &p); err != nil {
			return Effect{}, err
		}
		return c.CodeChange(ctx, connectionID, p.Code)

	case EventLanguageChange:
		var p languageChangePayload
		if err := decode(ev, &p); err != nil {
			return Effect{}, err
		}
		return c.LanguageChange(ctx, connectionID, p.Language)

	case EventThemeChange:
		var p themeChangePayload
		if err := decode(ev, &p); err != nil {
			return Effect{}, err
		}
		return c.ThemeChange(ctx, connectionID, p.Theme)

	case EventChatMessage:
		var p chatMessagePayload
		if err := decode(ev, &p); err != nil {
			return Effect{}, err
		}
		return c.ChatMessage(ctx, connectionID, p.Message)

	case EventCodeRun:
		var p codeRunPayload
		if err := decode(ev, &p); err != nil {
			return Effect{}, err
		}
		return c.CodeRun(ctx, connectionID, p.Output)

	default:
		return Effect{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
	}
}

func decode(ev Event, v interface{}) error {
	if len(ev.Data) == 0 {
		return fmt.Errorf("%s: missing payload", ev.Name)
	}
	if err := json.Unmarshal(ev.Data, v); err != nil {
		return fmt.Errorf("%s: decode payload: %w", ev.Name, err)
	}
	return nil
}

// Join adds or re-activates req.UserID in req.RoomID and binds the connection to it.
// identity, when non-empty, must equal req.UserID.
func (c *Coordinator) Join(ctx context.Context, connectionID, identity string, req JoinRequest) (Effect, error) {
	if err := validateJoin(identity, req); err != nil {
		return joinFailure(err), err
	}

	room, err := c.store.FindRoom(ctx, req.RoomID)
	switch {
	case errors.Is(err, database.ErrRoomNotFound):
		err = c.createRoom(ctx, connectionID, req)
	case err != nil:
		err = persistence("find room", err)
	default:
		err = c.addParticipant(ctx, connectionID, room, req)
	}
	if err != nil {
		return joinFailure(err), err
	}

	var eff Effect
	if prev, ok := c.sessions.Get(connectionID); ok && (prev.RoomID != req.RoomID || prev.UserID != req.UserID) {
		// the connection was bound to another identity; that one is no longer online here
		left, err := c.leave(ctx, connectionID, prev)
		if err != nil {
			c.logger.Warn("release previous binding", "connection", connectionID, "room", prev.RoomID, "error", err)
		}
		eff.Broadcasts = append(eff.Broadcasts, left.Broadcasts...)
	}

	c.sessions.Set(connectionID, session.Session{
		RoomID:   req.RoomID,
		UserName: req.UserName,
		UserID:   req.UserID,
	})
	eff.Subscribe = req.RoomID

	updated, err := c.store.FindRoom(ctx, req.RoomID)
	if err != nil {
		err = persistence("reload room", err)
		eff.Broadcasts = append(eff.Broadcasts, joinFailure(err).Broadcasts...)
		return eff, err
	}

	eff.add(Broadcast{
		Event:    EventRoomState,
		RoomID:   req.RoomID,
		Audience: AudienceRoom,
		Payload:  NewRoomState(updated),
	})
	return eff, nil
}

func validateJoin(identity string, req JoinRequest) error {
	if req.RoomID == "" || req.UserName == "" || req.UserID == "" {
		return &ValidationError{Reason: reasonMissingFields}
	}
	if n := utf8.RuneCountInString(req.UserName); n < minNameLength || n > maxNameLength {
		return &ValidationError{Reason: reasonNameLength}
	}
	if identity != "" && identity != req.UserID {
		return &ValidationError{Reason: reasonIdentityMismatch}
	}
	return nil
}

func (c *Coordinator) createRoom(ctx context.Context, connectionID string, req JoinRequest) error {
	room := models.NewRoom(
		req.RoomID,
		c.snippets.Snippet(models.DefaultLanguage),
		models.NewParticipant(req.UserID, req.UserName, connectionID),
		models.NewSystemMessage(req.UserName+" joined the room", c.now()),
	)
	if err := c.store.CreateRoom(ctx, room); err != nil {
		return persistence("create room", err)
	}

	c.logger.Info("room created", "room", req.RoomID, "user", req.UserID)
	return nil
}

func (c *Coordinator) addParticipant(ctx context.Context, connectionID string, room *models.Room, req JoinRequest) error {
	idx := room.FindParticipant(req.UserID)
	if idx < 0 && len(room.Users) >= c.maxUsers {
		return &CapacityError{Max: c.maxUsers}
	}

	verb := "joined"
	if idx >= 0 {
		room.Users[idx].MarkOnline(req.UserName, connectionID)
		verb = "rejoined"
	} else {
		room.Users = append(room.Users, models.NewParticipant(req.UserID, req.UserName, connectionID))
	}
	room.AppendMessage(models.NewSystemMessage(fmt.Sprintf("%s %s the room", req.UserName, verb), c.now()))

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return persistence("save room", err)
	}

	c.logger.Info("participant "+verb, "room", req.RoomID, "user", req.UserID, "roster", len(room.Users))
	return nil
}

// CodeChange stores the new buffer and relays it to everyone but the sender.
func (c *Coordinator) CodeChange(ctx context.Context, connectionID, code string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}

	if err := c.store.UpdateRoom(ctx, sess.RoomID, database.RoomFields{Code: &code}); err != nil {
		return Effect{}, persistence("update code", err)
	}

	return single(Broadcast{
		Event:    EventCodeUpdate,
		RoomID:   sess.RoomID,
		Audience: AudienceOthers,
		Payload:  CodeUpdate{Code: code},
	}), nil
}

// LanguageChange resets the buffer to the language's starter snippet; every
// member, sender included, is told to resync.
func (c *Coordinator) LanguageChange(ctx context.Context, connectionID, language string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}

	code := c.snippets.Snippet(language)
	if err := c.store.UpdateRoom(ctx, sess.RoomID, database.RoomFields{Language: &language, Code: &code}); err != nil {
		return Effect{}, persistence("update language", err)
	}

	return single(Broadcast{
		Event:    EventLanguageUpdate,
		RoomID:   sess.RoomID,
		Audience: AudienceRoom,
		Payload:  LanguageUpdate{Language: language, Code: code},
	}), nil
}

func (c *Coordinator) ThemeChange(ctx context.Context, connectionID, theme string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}

	if err := c.store.UpdateRoom(ctx, sess.RoomID, database.RoomFields{Theme: &theme}); err != nil {
		return Effect{}, persistence("update theme", err)
	}

	return single(Broadcast{
		Event:    EventThemeUpdate,
		RoomID:   sess.RoomID,
		Audience: AudienceOthers,
		Payload:  ThemeUpdate{Theme: theme},
	}), nil
}

func (c *Coordinator) ChatMessage(ctx context.Context, connectionID, text string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}

	room, err := c.findSessionRoom(ctx, sess)
	if room == nil {
		return Effect{}, err
	}

	msg := models.NewChatMessage(sess.UserID, sess.UserName, text, c.now())
	room.AppendMessage(msg)
	if err := c.store.SaveRoom(ctx, room); err != nil {
		return Effect{}, persistence("save chat message", err)
	}

	return single(Broadcast{
		Event:    EventChatMessage,
		RoomID:   sess.RoomID,
		Audience: AudienceRoom,
		Payload:  msg,
	}), nil
}

// CodeRun records a system notice and relays the client-side output to the room.
func (c *Coordinator) CodeRun(ctx context.Context, connectionID, output string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}

	room, err := c.findSessionRoom(ctx, sess)
	if room == nil {
		return Effect{}, err
	}

	notice := models.NewSystemMessage(sess.UserName+" executed the code", c.now())
	room.AppendMessage(notice)
	if err := c.store.SaveRoom(ctx, room); err != nil {
		return Effect{}, persistence("save code run", err)
	}

	return Effect{Broadcasts: []Broadcast{
		{
			Event:    EventCodeRun,
			RoomID:   sess.RoomID,
			Audience: AudienceRoom,
			Payload:  CodeRun{Output: output, ExecutedBy: sess.UserName},
		},
		{
			Event:    EventChatMessage,
			RoomID:   sess.RoomID,
			Audience: AudienceRoom,
			Payload:  notice,
		},
	}}, nil
}

// Disconnect marks the connection's participant offline and drops its session.
// The session is dropped even when persistence fails: the connection is gone either way.
func (c *Coordinator) Disconnect(ctx context.Context, connectionID string) (Effect, error) {
	sess, ok := c.sessions.Get(connectionID)
	if !ok {
		return Effect{}, nil
	}
	defer c.sessions.Delete(connectionID)

	return c.leave(ctx, connectionID, sess)
}

func (c *Coordinator) leave(ctx context.Context, connectionID string, sess session.Session) (Effect, error) {
	room, err := c.findSessionRoom(ctx, sess)
	if room == nil {
		return Effect{}, err
	}

	if idx := room.FindParticipant(sess.UserID); idx >= 0 {
		p := &room.Users[idx]
		if p.IsOnline && !p.ConnectedTo(connectionID) {
			c.logger.Debug("stale disconnect ignored", "room", sess.RoomID, "user", sess.UserID, "connection", connectionID)
			return Effect{}, nil
		}
		p.MarkOffline(c.now())
	}
	room.AppendMessage(models.NewSystemMessage(sess.UserName+" left the room", c.now()))

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return Effect{}, persistence("save room", err)
	}

	updated, err := c.store.FindRoom(ctx, sess.RoomID)
	if err != nil {
		return Effect{}, persistence("reload room", err)
	}

	c.logger.Info("participant left", "room", sess.RoomID, "user", sess.UserID)
	return single(Broadcast{
		Event:    EventRoomState,
		RoomID:   sess.RoomID,
		Audience: AudienceRoom,
		Payload:  NewRoomState(updated),
	}), nil
}

// findSessionRoom loads the session's room. A room that vanished yields (nil, nil):
// the event is dropped without an error.
func (c *Coordinator) findSessionRoom(ctx context.Context, sess session.Session) (*models.Room, error) {
	room, err := c.store.FindRoom(ctx, sess.RoomID)
	if errors.Is(err, database.ErrRoomNotFound) {
		c.logger.Warn("session room not found", "room", sess.RoomID, "user", sess.UserID)
		return nil, nil
	}
	if err != nil {
		return nil, persistence("find room", err)
	}
	return room, nil
}

func single(b Broadcast) Effect {
	return Effect{Broadcasts: []Broadcast{b}}
}
