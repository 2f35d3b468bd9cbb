package models

import (
	"time"
)

const (
	DefaultLanguage = "javascript"
	DefaultTheme    = "dark"

	// MaxParticipants is the roster cap for a single room.
	MaxParticipants = 10
)

// Room is the persisted document of a collaborative session, keyed by RoomID.
// Users keeps join order: the first entry is the host.
type Room struct {
	RoomID    string        `gorm:"primaryKey;size:255" json:"roomId" bson:"roomId"`
	Users     []Participant `gorm:"serializer:json;type:jsonb" json:"users" bson:"users"`
	Code      string        `gorm:"type:text" json:"code" bson:"code"`
	Language  string        `gorm:"size:64;default:'javascript'" json:"language" bson:"language"`
	Theme     string        `gorm:"size:64;default:'dark'" json:"theme" bson:"theme"`
	Messages  []Message     `gorm:"serializer:json;type:jsonb" json:"messages" bson:"messages"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// NewRoom seeds a room with its first participant and greeting.
func NewRoom(roomID, code string, host Participant, greeting Message) *Room {
	return &Room{
		RoomID:   roomID,
		Users:    []Participant{host},
		Code:     code,
		Language: DefaultLanguage,
		Theme:    DefaultTheme,
		Messages: []Message{greeting},
	}
}

// FindParticipant returns the index of userID in the roster or -1.
func (r *Room) FindParticipant(userID string) int {
	for i := range r.Users {
		if r.Users[i].UserID == userID {
			return i
		}
	}
	return -1
}

// Host returns the first participant, nil for an empty roster.
func (r *Room) Host() *Participant {
	if len(r.Users) == 0 {
		return nil
	}
	return &r.Users[0]
}

func (r *Room) OnlineCount() int {
	n := 0
	for _, u := range r.Users {
		if u.IsOnline {
			n++
		}
	}
	return n
}

func (r *Room) AppendMessage(msg Message) {
	r.Messages = append(r.Messages, msg)
}

// Clone returns a deep copy so callers can mutate it without sharing slices.
func (r *Room) Clone() *Room {
	c := *r
	c.Users = make([]Participant, len(r.Users))
	for i, u := range r.Users {
		c.Users[i] = u.clone()
	}
	c.Messages = append([]Message(nil), r.Messages...)
	return &c
}
