package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/neoaplicacoes/customer-api/app/observability/metrics"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	// Register creates a self-registered account: role is forced to
	// ROLE_USER and the account starts active.
	Register(ctx context.Context, params types.CreateUserParams) (*types.User, error)

	// Create is the admin-side variant of Register; it shares the same
	// defaults but is reachable only through the admin-gated route.
	Create(ctx context.Context, params types.CreateUserParams) (*types.User, error)

	Update(ctx context.Context, id uuid.UUID, params types.UpdateUserParams) (*types.User, error)
	UpdateAdmin(ctx context.Context, id uuid.UUID, params types.UpdateUserAdminParams) (*types.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)

	GetAll(ctx context.Context) ([]types.User, error)
	GetByEmail(ctx context.Context, email string) ([]types.User, error)
	GetByRole(ctx context.Context, role string) ([]types.User, error)
	GetByActive(ctx context.Context, active bool) ([]types.User, error)

	GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.User], error)
	GetByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.User], error)
	GetByRolePaged(ctx context.Context, role string, page types.PageRequest) (*types.Page[types.User], error)
	GetByActivePaged(ctx context.Context, active bool, page types.PageRequest) (*types.Page[types.User], error)
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger  *slog.Logger
	repo    UserRepo
	metrics *metrics.AppMetrics // nil disables instrumentation (tests)
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, m *metrics.AppMetrics, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger:  logger,
		repo:    repo,
		metrics: m,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	if s.metrics != nil {
		s.metrics.RegisterRequestsTotal.Add(ctx, 1)
	}
	return s.createUser(ctx, params, "Register")
}

func (s *UserServiceImpl) Create(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	return s.createUser(ctx, params, "Create")
}

func (s *UserServiceImpl) createUser(ctx context.Context, params types.CreateUserParams, method string) (*types.User, error) {
	l := s.logger.With(slog.String("method", method))

	if err := validateCredentials(params.Email, params.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, params.Email, string(hash), types.RoleUser, true)
	if err != nil {
		l.WarnContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "User created", slog.String("email", user.Email))
	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "Update"), slog.String("userID", id.String()))

	var hash *string
	if params.Password != nil {
		if len(*params.Password) < minPasswordLen {
			return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, types.ErrBadRequest)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hs := string(h)
		hash = &hs
	}
	if params.Email != nil && !looksLikeEmail(*params.Email) {
		return nil, fmt.Errorf("invalid email: %w", types.ErrBadRequest)
	}

	user, err := s.repo.UpdateUser(ctx, id, params.Email, hash)
	if err != nil {
		l.WarnContext(ctx, "Failed to update user", slog.Any("error", err))
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateAdmin(ctx context.Context, id uuid.UUID, params types.UpdateUserAdminParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateAdmin"), slog.String("userID", id.String()))

	if params.Role != nil {
		role, ok := normalizeRole(*params.Role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q: %w", *params.Role, types.ErrBadRequest)
		}
		params.Role = &role
	}

	user, err := s.repo.UpdateUserAdmin(ctx, id, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to patch user admin fields", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "User admin fields updated",
		slog.String("email", user.Email),
		slog.String("role", user.Role),
		slog.Bool("active", user.Active))
	return user, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserServiceImpl) GetAll(ctx context.Context) ([]types.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) ([]types.User, error) {
	return s.repo.GetUsersByEmail(ctx, email)
}

func (s *UserServiceImpl) GetByRole(ctx context.Context, role string) ([]types.User, error) {
	if normalized, ok := normalizeRole(role); ok {
		role = normalized
	}
	return s.repo.GetUsersByRole(ctx, role)
}

func (s *UserServiceImpl) GetByActive(ctx context.Context, active bool) ([]types.User, error) {
	return s.repo.GetUsersByActive(ctx, active)
}

func (s *UserServiceImpl) GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.User], error) {
	return s.repo.GetAllUsersPaged(ctx, page)
}

func (s *UserServiceImpl) GetByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.User], error) {
	return s.repo.GetUsersByEmailPaged(ctx, email, page)
}

func (s *UserServiceImpl) GetByRolePaged(ctx context.Context, role string, page types.PageRequest) (*types.Page[types.User], error) {
	if normalized, ok := normalizeRole(role); ok {
		role = normalized
	}
	return s.repo.GetUsersByRolePaged(ctx, role, page)
}

func (s *UserServiceImpl) GetByActivePaged(ctx context.Context, active bool, page types.PageRequest) (*types.Page[types.User], error) {
	return s.repo.GetUsersByActivePaged(ctx, active, page)
}

const minPasswordLen = 6

func validateCredentials(email, password string) error {
	if !looksLikeEmail(email) {
		return fmt.Errorf("invalid email: %w", types.ErrBadRequest)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, types.ErrBadRequest)
	}
	return nil
}

func looksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

// normalizeRole accepts "ADMIN", "admin", "ROLE_ADMIN" etc. and returns the
// canonical stored value.
func normalizeRole(role string) (string, bool) {
	switch strings.ToUpper(strings.TrimPrefix(strings.ToUpper(role), "ROLE_")) {
	case "USER":
		return types.RoleUser, true
	case "ADMIN":
		return types.RoleAdmin, true
	default:
		return "", false
	}
}
