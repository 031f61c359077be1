package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the bearer session to the request context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the bearer session, or nil when the request
// never passed the authorization gate.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
