package address

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

var _ AddressRepo = (*PostgresAddressRepo)(nil)

const addressColumns = "id, cep, number, complement, street, neighborhood, city, state, created_at, updated_at"

// AddressRepo defines the contract for address data persistence.
type AddressRepo interface {
	CreateAddress(ctx context.Context, params types.CreateAddressParams) (*types.Address, error)
	GetAddressByID(ctx context.Context, id uuid.UUID) (*types.Address, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, params types.UpdateAddressParams) (*types.Address, error)
	DeleteAddress(ctx context.Context, id uuid.UUID) error

	GetAllAddresses(ctx context.Context) ([]types.Address, error)
	GetAddressesByCep(ctx context.Context, cep string) ([]types.Address, error)
	GetAddressesByCity(ctx context.Context, city string) ([]types.Address, error)
	GetAddressesByState(ctx context.Context, state string) ([]types.Address, error)
	GetAddressesByNeighborhood(ctx context.Context, neighborhood string) ([]types.Address, error)
	GetAddressesByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Address, error)
	GetAddressesByStreet(ctx context.Context, street string) ([]types.Address, error)
	GetAddressesByCityAndStreet(ctx context.Context, city, street string) ([]types.Address, error)

	GetAllAddressesPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByCepPaged(ctx context.Context, cep string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByNeighborhoodPaged(ctx context.Context, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByStreetPaged(ctx context.Context, street string, page types.PageRequest) (*types.Page[types.Address], error)
	GetAddressesByCityAndStreetPaged(ctx context.Context, city, street string, page types.PageRequest) (*types.Page[types.Address], error)
}

// DBPool is the subset of pgxpool.Pool this repository uses.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresAddressRepo struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewPostgresAddressRepo(pgpool DBPool, logger *slog.Logger) *PostgresAddressRepo {
	return &PostgresAddressRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAddressRepo) CreateAddress(ctx context.Context, params types.CreateAddressParams) (*types.Address, error) {
	ctx, span := otel.Tracer("AddressRepo").Start(ctx, "CreateAddress", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "addresses"),
	))
	defer span.End()

	var addr types.Address
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO addresses (cep, number, complement, street, neighborhood, city, state)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+addressColumns,
		params.Cep, params.Number, params.Complement, params.Street,
		params.Neighborhood, params.City, strings.ToUpper(params.State)).
		Scan(&addr.ID, &addr.Cep, &addr.Number, &addr.Complement, &addr.Street,
			&addr.Neighborhood, &addr.City, &addr.State, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("create address: insert failed: %w", err)
	}
	return &addr, nil
}

func (r *PostgresAddressRepo) GetAddressByID(ctx context.Context, id uuid.UUID) (*types.Address, error) {
	var addr types.Address
	err := r.pgpool.QueryRow(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id = $1", id).
		Scan(&addr.ID, &addr.Cep, &addr.Number, &addr.Complement, &addr.Street,
			&addr.Neighborhood, &addr.City, &addr.State, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get address by id: query failed: %w", err)
	}
	return &addr, nil
}

func (r *PostgresAddressRepo) UpdateAddress(ctx context.Context, id uuid.UUID, params types.UpdateAddressParams) (*types.Address, error) {
	ctx, span := otel.Tracer("AddressRepo").Start(ctx, "UpdateAddress", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "addresses"),
	))
	defer span.End()

	setClauses, args := BuildSetClauses(params)
	if len(setClauses) == 0 {
		return r.GetAddressByID(ctx, id)
	}

	argID := len(args) + 1
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE addresses SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, addressColumns)

	var addr types.Address
	err := r.pgpool.QueryRow(ctx, query, args...).
		Scan(&addr.ID, &addr.Cep, &addr.Number, &addr.Complement, &addr.Street,
			&addr.Neighborhood, &addr.City, &addr.State, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("update address: update failed: %w", err)
	}
	return &addr, nil
}

// BuildSetClauses renders SET clauses for the non-nil fields of params.
// The customer repository reuses it for nested address merges.
func BuildSetClauses(params types.UpdateAddressParams) ([]string, []any) {
	var setClauses []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Cep != nil {
		add("cep", *params.Cep)
	}
	if params.Number != nil {
		add("number", *params.Number)
	}
	if params.Complement != nil {
		add("complement", *params.Complement)
	}
	if params.Street != nil {
		add("street", *params.Street)
	}
	if params.Neighborhood != nil {
		add("neighborhood", *params.Neighborhood)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.State != nil {
		add("state", strings.ToUpper(*params.State))
	}
	return setClauses, args
}

func (r *PostgresAddressRepo) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM addresses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete address: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAddressRepo) GetAllAddresses(ctx context.Context) ([]types.Address, error) {
	return r.queryAddresses(ctx, "SELECT "+addressColumns+" FROM addresses ORDER BY created_at")
}

func (r *PostgresAddressRepo) GetAddressesByCep(ctx context.Context, cep string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE cep = $1 ORDER BY created_at", cep)
}

func (r *PostgresAddressRepo) GetAddressesByCity(ctx context.Context, city string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE lower(city) = lower($1) ORDER BY created_at", city)
}

func (r *PostgresAddressRepo) GetAddressesByState(ctx context.Context, state string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE lower(state) = lower($1) ORDER BY created_at", state)
}

func (r *PostgresAddressRepo) GetAddressesByNeighborhood(ctx context.Context, neighborhood string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE lower(neighborhood) = lower($1) ORDER BY created_at", neighborhood)
}

func (r *PostgresAddressRepo) GetAddressesByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+` FROM addresses
         WHERE lower(city) = lower($1) AND lower(neighborhood) = lower($2) ORDER BY created_at`,
		city, neighborhood)
}

func (r *PostgresAddressRepo) GetAddressesByStreet(ctx context.Context, street string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE street ILIKE '%' || $1 || '%' ORDER BY created_at", street)
}

func (r *PostgresAddressRepo) GetAddressesByCityAndStreet(ctx context.Context, city, street string) ([]types.Address, error) {
	return r.queryAddresses(ctx,
		"SELECT "+addressColumns+` FROM addresses
         WHERE lower(city) = lower($1) AND street ILIKE '%' || $2 || '%' ORDER BY created_at`,
		city, street)
}

func (r *PostgresAddressRepo) GetAllAddressesPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "", nil, page)
}

func (r *PostgresAddressRepo) GetAddressesByCepPaged(ctx context.Context, cep string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "cep = $1", []any{cep}, page)
}

func (r *PostgresAddressRepo) GetAddressesByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "lower(city) = lower($1)", []any{city}, page)
}

func (r *PostgresAddressRepo) GetAddressesByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "lower(state) = lower($1)", []any{state}, page)
}

func (r *PostgresAddressRepo) GetAddressesByNeighborhoodPaged(ctx context.Context, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "lower(neighborhood) = lower($1)", []any{neighborhood}, page)
}

func (r *PostgresAddressRepo) GetAddressesByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx,
		"lower(city) = lower($1) AND lower(neighborhood) = lower($2)",
		[]any{city, neighborhood}, page)
}

func (r *PostgresAddressRepo) GetAddressesByStreetPaged(ctx context.Context, street string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx, "street ILIKE '%' || $1 || '%'", []any{street}, page)
}

func (r *PostgresAddressRepo) GetAddressesByCityAndStreetPaged(ctx context.Context, city, street string, page types.PageRequest) (*types.Page[types.Address], error) {
	return r.queryAddressesPaged(ctx,
		"lower(city) = lower($1) AND street ILIKE '%' || $2 || '%'",
		[]any{city, street}, page)
}

func (r *PostgresAddressRepo) queryAddresses(ctx context.Context, query string, args ...any) ([]types.Address, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []types.Address
	for rows.Next() {
		var addr types.Address
		if err := rows.Scan(&addr.ID, &addr.Cep, &addr.Number, &addr.Complement,
			&addr.Street, &addr.Neighborhood, &addr.City, &addr.State,
			&addr.CreatedAt, &addr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}
	return addresses, nil
}

func (r *PostgresAddressRepo) queryAddressesPaged(ctx context.Context, where string, args []any, page types.PageRequest) (*types.Page[types.Address], error) {
	countQuery := "SELECT count(*) FROM addresses"
	listQuery := "SELECT " + addressColumns + " FROM addresses"
	if where != "" {
		countQuery += " WHERE " + where
		listQuery += " WHERE " + where
	}

	var total int64
	if err := r.pgpool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count addresses: query failed: %w", err)
	}

	listQuery += " ORDER BY " + orderClause(page) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	addresses, err := r.queryAddresses(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	return types.NewPage(addresses, page, total), nil
}

func orderClause(page types.PageRequest) string {
	if page.SortField == "" {
		return "created_at"
	}
	if page.SortDesc {
		return page.SortField + " DESC"
	}
	return page.SortField + " ASC"
}
