package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "adopsi/pkg/domain"
	"adopsi/pkg/requestcontext"
)

// JWTClaims represents the claims middleware expects from the token validator.
type JWTClaims struct {
	UserID id.UserID
	Role   id.Role
	JTI    string
}

// JWTValidator validates a bearer token and returns its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// RevocationChecker reports whether a token ID has been revoked (logout).
// A nil checker disables the check.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// GetUserID retrieves the authenticated caller ID from the context.
func GetUserID(ctx context.Context) id.UserID {
	return requestcontext.UserID(ctx)
}

// GetRole retrieves the authenticated caller role from the context.
func GetRole(ctx context.Context) id.Role {
	return requestcontext.Role(ctx)
}

// RequireAuth rejects requests without a valid bearer token and threads the
// caller identity and role into context for handlers and services.
func RequireAuth(validator JWTValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if revocations != nil && claims.JTI != "" {
				revoked, err := revocations.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					// Fail closed: an unverifiable token is treated as invalid.
					writeUnauthorized(w, "Invalid or expired token")
					return
				}
				if revoked {
					writeUnauthorized(w, "Token has been revoked")
					return
				}
			}

			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			ctx = requestcontext.WithTokenID(ctx, claims.JTI)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
