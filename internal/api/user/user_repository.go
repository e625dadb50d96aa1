package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

const userColumns = "id, email, password_hash, role, active, created_at, updated_at"

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// CreateUser inserts a user row. Returns types.ErrConflict when the
	// email already exists (case-insensitively); the unique index resolves
	// concurrent duplicate registrations, not application locking.
	CreateUser(ctx context.Context, email, passwordHash, role string, active bool) (*types.User, error)

	// GetUserByID returns types.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)

	GetAllUsers(ctx context.Context) ([]types.User, error)
	GetUsersByEmail(ctx context.Context, email string) ([]types.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]types.User, error)
	GetUsersByActive(ctx context.Context, active bool) ([]types.User, error)

	GetAllUsersPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.User], error)
	GetUsersByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.User], error)
	GetUsersByRolePaged(ctx context.Context, role string, page types.PageRequest) (*types.Page[types.User], error)
	GetUsersByActivePaged(ctx context.Context, active bool, page types.PageRequest) (*types.Page[types.User], error)

	// UpdateUser applies the non-nil fields. passwordHash is the already
	// hashed replacement, or nil to keep the current one.
	UpdateUser(ctx context.Context, id uuid.UUID, email, passwordHash *string) (*types.User, error)

	// UpdateUserAdmin patches role and/or active flag.
	UpdateUserAdmin(ctx context.Context, id uuid.UUID, params types.UpdateUserAdminParams) (*types.User, error)

	DeleteUser(ctx context.Context, id uuid.UUID) error

	// CountUsers supports the idempotent startup seed.
	CountUsers(ctx context.Context) (int64, error)
}

// DBPool is the subset of pgxpool.Pool this repository uses.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewPostgresUserRepo(pgpool DBPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, email, passwordHash, role string, active bool) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role, active)
         VALUES ($1, $2, $3, $4)
         RETURNING `+userColumns,
		email, passwordHash, role, active).Scan(&user.ID, &user.Email,
		&user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "duplicate email")
			return nil, fmt.Errorf("create user: email already registered: %w", types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("create user: insert failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) GetAllUsers(ctx context.Context) ([]types.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
}

func (r *PostgresUserRepo) GetUsersByEmail(ctx context.Context, email string) ([]types.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1) ORDER BY created_at",
		email)
}

func (r *PostgresUserRepo) GetUsersByRole(ctx context.Context, role string) ([]types.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(role) = lower($1) ORDER BY created_at",
		role)
}

func (r *PostgresUserRepo) GetUsersByActive(ctx context.Context, active bool) ([]types.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE active = $1 ORDER BY created_at",
		active)
}

func (r *PostgresUserRepo) GetAllUsersPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.User], error) {
	return r.queryUsersPaged(ctx, "", nil, page)
}

func (r *PostgresUserRepo) GetUsersByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.User], error) {
	return r.queryUsersPaged(ctx, "email ILIKE '%' || $1 || '%'", []any{email}, page)
}

func (r *PostgresUserRepo) GetUsersByRolePaged(ctx context.Context, role string, page types.PageRequest) (*types.Page[types.User], error) {
	return r.queryUsersPaged(ctx, "lower(role) = lower($1)", []any{role}, page)
}

func (r *PostgresUserRepo) GetUsersByActivePaged(ctx context.Context, active bool, page types.PageRequest) (*types.Page[types.User], error) {
	return r.queryUsersPaged(ctx, "active = $1", []any{active}, page)
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, id uuid.UUID, email, passwordHash *string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var setClauses []string
	var args []any
	argID := 1

	if email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, *email)
		argID++
	}
	if passwordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", argID))
		args = append(args, *passwordHash)
		argID++
	}
	if len(setClauses) == 0 {
		return r.GetUserByID(ctx, id)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	var user types.User
	err := r.pgpool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Email,
		&user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update user: email already registered: %w", types.ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("update user: update failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) UpdateUserAdmin(ctx context.Context, id uuid.UUID, params types.UpdateUserAdminParams) (*types.User, error) {
	var setClauses []string
	var args []any
	argID := 1

	if params.Role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", argID))
		args = append(args, *params.Role)
		argID++
	}
	if params.Active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", argID))
		args = append(args, *params.Active)
		argID++
	}
	if len(setClauses) == 0 {
		return r.GetUserByID(ctx, id)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	var user types.User
	err := r.pgpool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Email,
		&user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("update user admin fields: update failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pgpool.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: query failed: %w", err)
	}
	return count, nil
}

func (r *PostgresUserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]types.User, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
			&user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) queryUsersPaged(ctx context.Context, where string, args []any, page types.PageRequest) (*types.Page[types.User], error) {
	countQuery := "SELECT count(*) FROM users"
	listQuery := "SELECT " + userColumns + " FROM users"
	if where != "" {
		countQuery += " WHERE " + where
		listQuery += " WHERE " + where
	}

	var total int64
	if err := r.pgpool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: query failed: %w", err)
	}

	listQuery += " ORDER BY " + orderClause(page) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	users, err := r.queryUsers(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	return types.NewPage(users, page, total), nil
}

// orderClause renders the whitelisted sort column; handlers validate the
// property name, so the value is never raw client input.
func orderClause(page types.PageRequest) string {
	if page.SortField == "" {
		return "created_at"
	}
	if page.SortDesc {
		return page.SortField + " DESC"
	}
	return page.SortField + " ASC"
}
