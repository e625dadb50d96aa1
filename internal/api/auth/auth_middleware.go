package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/neoaplicacoes/customer-api/internal/api"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

// Define typed context keys
type contextKey string

const principalKey contextKey = "principal"

// Authenticate validates a bearer token, re-resolves the subject to a live
// user row and attaches the principal to the request context. It never
// rejects the request itself: missing, malformed or expired tokens (and any
// internal failure) just leave the request unauthenticated, and the route
// guards decide downstream. Because the subject is re-resolved on every
// request, deactivating an account takes effect on the next call even while
// a previously issued token is still unexpired.
func Authenticate(logger *slog.Logger, codec *TokenCodec, repo AuthRepo) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				l.WarnContext(ctx, "Invalid Authorization header format")
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Verify(headerParts[1])
			if err != nil {
				// Stale and garbled tokens are routine; warn, don't error.
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			user, err := repo.GetUserByEmail(ctx, claims.Subject)
			if err != nil || !user.Active {
				if err != nil {
					l.WarnContext(ctx, "Token subject could not be resolved", slog.Any("error", err))
				} else {
					l.WarnContext(ctx, "Token subject is inactive", slog.String("email", claims.Subject))
				}
				next.ServeHTTP(w, r)
				return
			}

			principal := &types.Principal{
				Email:  user.Email,
				Role:   user.Role,
				Active: user.Active,
			}
			ctx = context.WithValue(ctx, principalKey, principal)
			l.DebugContext(ctx, "Authentication successful", slog.String("email", principal.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext returns the authenticated principal, if any.
func GetPrincipalFromContext(ctx context.Context) (*types.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*types.Principal)
	return principal, ok
}

// RequireAuth rejects requests that carry no authenticated principal.
// Runs AFTER the Authenticate middleware.
func RequireAuth(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetPrincipalFromContext(r.Context()); !ok {
				logger.DebugContext(r.Context(), "Unauthenticated request to protected route",
					slog.String("path", r.URL.Path))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated principals lacking the given role.
// No principal at all is 401, insufficient role is 403; the two outcomes
// are deliberately distinct.
func RequireRole(logger *slog.Logger, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !hasRole(principal, role) {
				logger.DebugContext(r.Context(), "Role check failed",
					slog.String("required", role),
					slog.String("actual", principal.Role))
				api.ErrorResponse(w, r, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hasRole compares ignoring the stored ROLE_ prefix, so guards read as
// RequireRole(logger, "ADMIN") while rows carry "ROLE_ADMIN".
func hasRole(p *types.Principal, role string) bool {
	return strings.EqualFold(strings.TrimPrefix(p.Role, "ROLE_"), strings.TrimPrefix(role, "ROLE_"))
}
