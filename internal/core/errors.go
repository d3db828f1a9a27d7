package core

import "errors"

var (
	// ErrEmptyField is returned when a submission lacks username or message.
	ErrEmptyField = errors.New("username and message are required")
)
