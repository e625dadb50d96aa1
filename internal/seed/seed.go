// Package seed provisions the default accounts on startup so a fresh
// deployment is immediately usable.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/neoaplicacoes/customer-api/internal/api/user"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

type account struct {
	email    string
	password string
	role     string
}

// Default credentials are development bootstrap accounts. Rotate them in any
// non-local deployment.
var defaults = []account{
	{email: "admin@email.com", password: "admin123", role: types.RoleAdmin},
	{email: "user@email.com", password: "user123", role: types.RoleUser},
}

// Users creates the default accounts if they are missing. It is idempotent:
// existing accounts are left untouched, and a concurrent duplicate insert
// (types.ErrConflict) is treated as already seeded.
func Users(ctx context.Context, repo user.UserRepo, logger *slog.Logger) error {
	l := logger.With(slog.String("component", "seed"))

	// On a fresh database skip the per-account lookups entirely.
	total, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed users: count: %w", err)
	}

	for _, acc := range defaults {
		if total > 0 {
			existing, err := repo.GetUsersByEmail(ctx, acc.email)
			if err != nil && !errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("seed users: lookup %s: %w", acc.email, err)
			}
			if len(existing) > 0 {
				l.DebugContext(ctx, "Seed account already present", slog.String("email", acc.email))
				continue
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed users: hash password: %w", err)
		}
		if _, err := repo.CreateUser(ctx, acc.email, string(hash), acc.role, true); err != nil {
			if errors.Is(err, types.ErrConflict) {
				l.DebugContext(ctx, "Seed account raced into existence", slog.String("email", acc.email))
				continue
			}
			return fmt.Errorf("seed users: create %s: %w", acc.email, err)
		}
		l.InfoContext(ctx, "Seed account created",
			slog.String("email", acc.email), slog.String("role", acc.role))
	}
	return nil
}
