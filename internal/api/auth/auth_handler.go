package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/neoaplicacoes/customer-api/internal/api"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

type AuthHandlerImpl struct {
	authService AuthService
	throttle    *LoginThrottle
	logger      *slog.Logger
}

// NewAuthHandlerImpl creates a new auth handler instance. throttle may be
// nil to disable login rate limiting.
func NewAuthHandlerImpl(authService AuthService, throttle *LoginThrottle, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		authService: authService,
		throttle:    throttle,
		logger:      logger,
	}
}

// Login handles POST /auth/login. The failure response is identical for
// unknown email, wrong password and disabled account.
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	clientKey := clientIP(r)
	if h.throttle != nil && !h.throttle.Allow(clientKey) {
		l.WarnContext(ctx, "Login throttled", slog.String("client", clientKey))
		api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			if h.throttle != nil {
				h.throttle.Fail(clientKey)
			}
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		api.ErrorResponseFromErr(w, r, err)
		return
	}

	if h.throttle != nil {
		h.throttle.Reset(clientKey)
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		Token: token,
		User:  user,
	})
}

// clientIP strips the port; RealIP middleware has already unwrapped proxy
// headers upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
