package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionCookieName is the cookie the hosted auth platform sets after login.
const SessionCookieName = "sd_session"

const sessionKeyPrefix = "session:"

// RedisResolver resolves session cookies against the session records the
// auth platform writes to Redis.
type RedisResolver struct {
	client *redis.Client
}

// NewRedisResolver creates a resolver. Panics if client is nil.
func NewRedisResolver(client *redis.Client) *RedisResolver {
	if client == nil {
		panic("auth: redis client is required")
	}
	return &RedisResolver{client: client}
}

type sessionRecord struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Resolve validates the session cookie and returns the user it belongs to.
// Missing or expired sessions return ErrUnauthenticated; malformed records
// return ErrSessionInvalid.
func (r *RedisResolver) Resolve(req *http.Request) (*User, error) {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrUnauthenticated
	}

	data, err := r.client.Get(req.Context(), sessionKeyPrefix+cookie.Value).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	return &User{ID: userID, Email: rec.Email}, nil
}
