package auth

import "github.com/google/uuid"

// User is the authenticated identity resolved from session state.
// The hosted auth platform owns the account record; only the identifier and
// email are carried through the request lifecycle.
type User struct {
	ID    uuid.UUID
	Email string
}
