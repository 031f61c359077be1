package shared

import (
	"net/http"
	"strings"
)

// Session holds the identity claims decoded from a bearer token for the
// duration of one request. Nothing is persisted server side; validity is a
// function of the token signature alone.
type Session struct {
	AccountID int64
	Name      string
	Email     string
	Role      Role
}

// TokenDecoder verifies and decodes a bearer token into a Session.
type TokenDecoder interface {
	Decode(token string) (Session, error)
}

// SessionResolver extracts the session from an inbound request.
type SessionResolver struct {
	decoder TokenDecoder
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(decoder TokenDecoder) *SessionResolver {
	return &SessionResolver{decoder: decoder}
}

// Resolve reads the Authorization header and returns the decoded session, or
// nil when the header is absent, malformed, or carries an invalid token.
// Callers cannot distinguish "missing" from "invalid"; both are anonymous.
func (sr *SessionResolver) Resolve(r *http.Request) *Session {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}

	sess, err := sr.decoder.Decode(parts[1])
	if err != nil {
		return nil
	}
	return &sess
}
