package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrNilHandler           = errors.New("handler is required")
	ErrFailedLoadCert       = errors.New("failed to load certificate")
)
