package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential-store lookup needed by the authenticator and
// the request middleware.
type AuthRepo interface {
	// GetUserByEmail retrieves a user by email, case-insensitively.
	// Returns types.ErrNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool DBPool
}

// DBPool is the subset of pgxpool.Pool this repository uses. Satisfied by
// *pgxpool.Pool in production and by pgxmock pools in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgresAuthRepo(pgpool DBPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, active, created_at, updated_at
         FROM users WHERE lower(email) = lower($1)`,
		email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}
	return &user, nil
}
