package presence

import (
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown event")

const joinFailedMessage = "Failed to join room"

// ValidationError rejects a malformed join before any state change.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// CapacityError rejects a new participant when the roster is full.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Room is full (max %d users)", e.Max)
}

// PersistenceError wraps a failed store call; the operation it belongs to did not happen.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// joinErrorMessage is the text sent to the client in join-error.
func joinErrorMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return joinFailedMessage
}
