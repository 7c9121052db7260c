package model

import "errors"

// Session errors
var (
	// ErrNotRegistered is returned by session-scoped operations on a session
	// that never completed registration. No request is sent when it occurs.
	ErrNotRegistered = errors.New("session is not registered")
)
