package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListenerFailed       = errors.New("failed to create listener")
	ErrIndexMissing         = errors.New("index document missing from public root")
	ErrInvalidMessage       = errors.New("invalid message")
)
