package service

import "errors"

// Errors shared by the service and its storage layers. The session and
// config packages re-export them so callers can match with errors.Is at
// any layer.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidRequest  = errors.New("invalid request")
)
