package models

import (
	"time"
)

type MessageType string

const (
	MessageTypeText   MessageType = "message"
	MessageTypeSystem MessageType = "system"
)

const (
	SystemUserID   = "system"
	SystemUserName = "System"
)

// Message is an entry of the room chat log. The log is append-only.
type Message struct {
	UserID    string      `json:"userId" bson:"userId"`
	UserName  string      `json:"userName" bson:"userName"`
	Message   string      `json:"message" bson:"message"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	Type      MessageType `json:"type" bson:"type"`
}

func NewSystemMessage(text string, at time.Time) Message {
	return Message{
		UserID:    SystemUserID,
		UserName:  SystemUserName,
		Message:   text,
		Timestamp: at,
		Type:      MessageTypeSystem,
	}
}

func NewChatMessage(userID, userName, text string, at time.Time) Message {
	return Message{
		UserID:    userID,
		UserName:  userName,
		Message:   text,
		Timestamp: at,
		Type:      MessageTypeText,
	}
}
