package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// TokenSink receives the bearer credential supplied by the caller. The
// application state implements it; issuance and validation stay external.
type TokenSink interface {
	Token() string
	SetToken(token string)
}

// AuthMiddleware requires an opaque bearer credential and hands it to the
// application state. Whether the token is actually valid only surfaces
// when the backend answers 401, which triggers the forced-logout path.
func AuthMiddleware(sink TokenSink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
				return
			}
			if sink.Token() != token {
				sink.SetToken(token)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
