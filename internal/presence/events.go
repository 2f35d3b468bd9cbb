package presence

import (
	"encoding/json"

	"github.com/thereayou/codecollab/internal/models"
)

// Inbound event names.
const (
	EventJoinRoom       = "join-room"
	EventCodeChange     = "code-change"
	EventLanguageChange = "language-change"
	EventThemeChange    = "theme-change"
	EventChatMessage    = "chat-message"
	EventCodeRun        = "code-run"
)

// Outbound event names. chat-message and code-run are echoed under their inbound names.
const (
	EventRoomState      = "room-state"
	EventJoinError      = "join-error"
	EventCodeUpdate     = "code-update"
	EventLanguageUpdate = "language-update"
	EventThemeUpdate    = "theme-update"
)

// Event is one inbound message from a connection.
// Identity, when set, is the user id the connection proved with an identity token.
type Event struct {
	Name     string
	Data     json.RawMessage
	Identity string
}

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	UserID   string `json:"userId"`
}

type codeChangePayload struct {
	Code string `json:"code"`
}

type languageChangePayload struct {
	Language string `json:"language"`
}

type themeChangePayload struct {
	Theme string `json:"theme"`
}

type chatMessagePayload struct {
	Message string `json:"message"`
}

type codeRunPayload struct {
	Output string `json:"output"`
}

// RoomState is the full snapshot broadcast after every roster change.
type RoomState struct {
	Code     string               `json:"code"`
	Language string               `json:"language"`
	Theme    string               `json:"theme"`
	Users    []models.Participant `json:"users"`
	Messages []models.Message     `json:"messages"`
}

func NewRoomState(room *models.Room) RoomState {
	return RoomState{
		Code:     room.Code,
		Language: room.Language,
		Theme:    room.Theme,
		Users:    room.Users,
		Messages: room.Messages,
	}
}

type JoinError struct {
	Message string `json:"message"`
}

type CodeUpdate struct {
	Code string `json:"code"`
}

type LanguageUpdate struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type ThemeUpdate struct {
	Theme string `json:"theme"`
}

type CodeRun struct {
	Output     string `json:"output"`
	ExecutedBy string `json:"executedBy"`
}
