package models

import "time"

type PresenceState string

const (
	Online  PresenceState = "online"
	Offline PresenceState = "offline"
)

// Presence is the explicit view of a participant's connection state:
// Online carries a ConnectionID, Offline carries LastSeen.
type Presence struct {
	State        PresenceState
	ConnectionID string
	LastSeen     time.Time
}

// Participant is a user's membership record inside Room.Users.
// The presence fields are only changed through MarkOnline and MarkOffline.
type Participant struct {
	UserID       string     `json:"userId" bson:"userId"`
	Name         string     `json:"name" bson:"name"`
	ConnectionID *string    `json:"connectionId" bson:"connectionId"`
	IsOnline     bool       `json:"isOnline" bson:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen" bson:"lastSeen"`
}

func NewParticipant(userID, name, connectionID string) Participant {
	p := Participant{UserID: userID}
	p.MarkOnline(name, connectionID)
	return p
}

// MarkOnline binds the participant to a live connection.
func (p *Participant) MarkOnline(name, connectionID string) {
	p.Name = name
	p.ConnectionID = &connectionID
	p.IsOnline = true
	p.LastSeen = nil
}

func (p *Participant) MarkOffline(at time.Time) {
	p.ConnectionID = nil
	p.IsOnline = false
	p.LastSeen = &at
}

func (p Participant) Presence() Presence {
	if p.IsOnline && p.ConnectionID != nil {
		return Presence{State: Online, ConnectionID: *p.ConnectionID}
	}
	var seen time.Time
	if p.LastSeen != nil {
		seen = *p.LastSeen
	}
	return Presence{State: Offline, LastSeen: seen}
}

// ConnectedTo reports whether the participant is online on connectionID.
func (p Participant) ConnectedTo(connectionID string) bool {
	pr := p.Presence()
	return pr.State == Online && pr.ConnectionID == connectionID
}

func (p Participant) clone() Participant {
	c := p
	if p.ConnectionID != nil {
		id := *p.ConnectionID
		c.ConnectionID = &id
	}
	if p.LastSeen != nil {
		t := *p.LastSeen
		c.LastSeen = &t
	}
	return c
}
