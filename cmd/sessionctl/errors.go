package main

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownBackend = errors.New("unknown session backend")
	ErrMissingFlag    = errors.New("missing required flag")
	ErrUnsupported    = errors.New("operation not supported by backend")
	ErrInvalidData    = errors.New("data must be key=value")
)
