package auth

import (
	"context"
)

type userContextKey struct{}

// SetUserToContext stores the authenticated user in context for downstream
// handlers.
func SetUserToContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext retrieves the authenticated user from context.
// Returns nil if no user was previously stored.
func GetUserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// RequireUserFromContext retrieves the authenticated user or fails with
// ErrUnauthenticated. Workflow entry points use this so unauthenticated calls
// stop before any external side effect.
func RequireUserFromContext(ctx context.Context) (*User, error) {
	user := GetUserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
