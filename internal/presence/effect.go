package presence

// Audience selects which connections receive a broadcast.
type Audience int

const (
	// AudienceRoom is every connection bound to the room, sender included.
	AudienceRoom Audience = iota
	// AudienceOthers is the room minus the originating connection.
	AudienceOthers
	// AudienceSender is the originating connection only.
	AudienceSender
)

func (a Audience) String() string {
	switch a {
	case AudienceRoom:
		return "room"
	case AudienceOthers:
		return "others"
	case AudienceSender:
		return "sender"
	default:
		return "unknown"
	}
}

type Broadcast struct {
	Event    string
	RoomID   string
	Audience Audience
	Payload  interface{}
}

// Effect describes what the transport must do after an event was handled.
// Subscribe, when set, binds the originating connection to that room channel
// before the broadcasts are delivered.
type Effect struct {
	Subscribe  string
	Broadcasts []Broadcast
}

func (e *Effect) add(b Broadcast) {
	e.Broadcasts = append(e.Broadcasts, b)
}

// Empty reports whether the effect asks the transport to do nothing.
func (e Effect) Empty() bool {
	return e.Subscribe == "" && len(e.Broadcasts) == 0
}

func joinFailure(err error) Effect {
	return Effect{Broadcasts: []Broadcast{{
		Event:    EventJoinError,
		Audience: AudienceSender,
		Payload:  JoinError{Message: joinErrorMessage(err)},
	}}}
}
