package session

import "errors"

var (
	// ErrInvalidInput rejects a session before it starts: empty message on
	// send, missing variable name on receive.
	ErrInvalidInput = errors.New("invalid input")

	// ErrChannelUnavailable rejects a session with no audio channel.
	ErrChannelUnavailable = errors.New("channel unavailable")
)
