package auth

import (
	"context"
	"errors"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"net/http"
	"strings"
)

// LegacyTokenHeader carries a bare token for clients that predate bearer auth.
const LegacyTokenHeader = "Auth-Token"

type contextKey string

const callerContextKey contextKey = "github.com/nikolayk812/orders-demo/internal/auth/caller"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates every request and stores the caller on its context.
func (a *Authenticator) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := tokenFromRequest(r)
			if !ok {
				onError(w, r, ErrInvalidToken)
				return
			}

			caller, err := a.Authenticate(tokenStr)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(domain.Caller)
	if !ok || caller.ID == "" {
		return domain.Caller{}, false
	}
	return caller, true
}

// IsMissingSubject reports whether err is a token without user_id.
func IsMissingSubject(err error) bool {
	return errors.Is(err, ErrMissingSubject)
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := extractBearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	token := strings.TrimSpace(r.Header.Get(LegacyTokenHeader))
	return token, token != ""
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}

	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
