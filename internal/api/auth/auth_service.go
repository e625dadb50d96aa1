package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/neoaplicacoes/customer-api/app/observability/metrics"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// dummyHash is compared against when the email is unknown, so the response
// time does not reveal whether the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	// Login verifies credentials and, on success, returns a signed access
	// token plus the user record (password hash stripped by serialization).
	// Every failure mode returns types.ErrUnauthenticated: callers cannot
	// distinguish unknown user, wrong password and disabled account.
	Login(ctx context.Context, email, password string) (string, *types.User, error)
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger  *slog.Logger
	repo    AuthRepo
	codec   *TokenCodec
	metrics *metrics.AppMetrics // nil disables instrumentation (tests)
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(repo AuthRepo, codec *TokenCodec, m *metrics.AppMetrics, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:  logger,
		repo:    repo,
		codec:   codec,
		metrics: m,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	l := s.logger.With(slog.String("method", "Login"))
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.LoginRequestsTotal.Add(ctx, 1)
			s.metrics.LoginDurationSeconds.Record(ctx, time.Since(start).Seconds())
		}
	}()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			l.ErrorContext(ctx, "Credential lookup failed", slog.Any("error", err))
			return "", nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, s.reject(ctx, l)
	}

	if !user.Active {
		return "", nil, s.reject(ctx, l)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, s.reject(ctx, l)
	}

	token, err := s.codec.Issue(user.Email, user.Role)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		return "", nil, fmt.Errorf("login: %w", err)
	}

	l.DebugContext(ctx, "Login successful", slog.String("email", user.Email))
	return token, user, nil
}

// reject records a failed attempt. The log line is identical for unknown
// user, wrong password and disabled account.
func (s *AuthServiceImpl) reject(ctx context.Context, l *slog.Logger) error {
	if s.metrics != nil {
		s.metrics.LoginFailuresTotal.Add(ctx, 1)
	}
	l.InfoContext(ctx, "Login rejected")
	return types.ErrUnauthenticated
}
