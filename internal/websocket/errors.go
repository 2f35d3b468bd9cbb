package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrClientGone      = errors.New("client is not connected")
	ErrHubStopped      = errors.New("hub stopped")
)
