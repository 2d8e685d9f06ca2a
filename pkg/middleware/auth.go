package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// WithAccountID returns a copy of ctx carrying the authenticated account ID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDFromContext returns the account ID set by the authenticator.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(accountIDKey).(string)
	return accountID, ok && accountID != ""
}

// NewAuthenticator validates HS256 bearer tokens and puts the "sub" claim
// into the request context as the account ID.
func NewAuthenticator(signingKey []byte, logger *slog.Logger) func(next http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return signingKey, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				respond.Error(w, http.StatusUnauthorized, "unauthenticated", "bearer token required")
				return
			}

			claims := &jwt.RegisteredClaims{}
			if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
				if !errors.Is(err, jwt.ErrTokenExpired) {
					logger.WarnContext(r.Context(), "rejected bearer token", "error", err)
				}
				respond.Error(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
				return
			}
			if claims.Subject == "" {
				respond.Error(w, http.StatusUnauthorized, "unauthenticated", "token has no subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), claims.Subject)))
		})
	}
}
