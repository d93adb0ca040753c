package auth

import (
	"context"

	"masterboxer.com/kpitter-web/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns nil for anonymous requests.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

// CredentialsFrom returns the anonymous pair when there is no session.
func CredentialsFrom(ctx context.Context) models.Credentials {
	if s := FromContext(ctx); s != nil {
		return s.Credentials
	}
	return models.Anonymous()
}
