package middleware

import (
	"context"
	"net/http"

	"sod/pkg/logger"
	"sod/pkg/session"
)

type (
	ISessionManager interface {
		SessionFromToken(string) (*session.Session, error)
	}

	Auth struct {
		SessionManager ISessionManager
	}
)

func NewAuthMiddleware(sm ISessionManager) *Auth {
	return &Auth{
		SessionManager: sm,
	}
}

// Resolves the bearer token into a session and puts it into the
// request context. An absent or invalid token passes through without
// one; handlers that need auth reject on their own.
func (auth Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := auth.SessionManager.SessionFromToken(authHeader)
		if err != nil {
			logger.Log(r.Context()).Errorf("can't get session from token: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), session.SessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
