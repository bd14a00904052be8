package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("no authenticated user session")
	ErrSessionInvalid  = errors.New("session could not be resolved")
)
