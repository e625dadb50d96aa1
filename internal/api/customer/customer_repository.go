package customer

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

	"github.com/neoaplicacoes/customer-api/app/observability/metrics"
	"github.com/neoaplicacoes/customer-api/internal/api/address"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ CustomerRepo = (*PostgresCustomerRepo)(nil)

// customerColumns selects the customer row plus its (possibly absent)
// address via LEFT JOIN.
const customerColumns = `c.id, c.name, c.email, c.cpf, c.phone, c.birth_date,
       c.created_at, c.updated_at,
       a.id, a.cep, a.number, a.complement, a.street, a.neighborhood,
       a.city, a.state, a.created_at, a.updated_at`

const customerFrom = " FROM customers c LEFT JOIN addresses a ON a.id = c.address_id"

// CustomerRepo defines the contract for customer data persistence.
type CustomerRepo interface {
	CreateCustomer(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*types.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	GetAllCustomers(ctx context.Context) ([]types.Customer, error)
	GetCustomersByName(ctx context.Context, name string) ([]types.Customer, error)
	GetCustomersByEmail(ctx context.Context, email string) ([]types.Customer, error)
	GetCustomersByCpf(ctx context.Context, cpf string) ([]types.Customer, error)
	GetCustomersByCity(ctx context.Context, city string) ([]types.Customer, error)
	GetCustomersByState(ctx context.Context, state string) ([]types.Customer, error)
	GetCustomersByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Customer, error)

	GetAllCustomersPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByNamePaged(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByCpfPaged(ctx context.Context, cpf string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetCustomersByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Customer], error)
}

// DBPool is the subset of pgxpool.Pool this repository uses. Customer writes
// span two tables, so it also needs transactions.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresCustomerRepo struct {
	logger  *slog.Logger
	pgpool  DBPool
	metrics *metrics.AppMetrics // nil disables instrumentation (tests)
}

func NewPostgresCustomerRepo(pgpool DBPool, m *metrics.AppMetrics, logger *slog.Logger) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{
		logger:  logger,
		pgpool:  pgpool,
		metrics: m,
	}
}

// observe records query duration and error counts for the db dashboards.
func (r *PostgresCustomerRepo) observe(ctx context.Context, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		r.metrics.DbQueryErrorsTotal.Add(ctx, 1)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateCustomer inserts the customer and, when present, its address inside a
// single transaction so a failed customer insert never leaves an orphan
// address row.
func (r *PostgresCustomerRepo) CreateCustomer(ctx context.Context, params types.CreateCustomerParams) (_ *types.Customer, err error) {
	ctx, span := otel.Tracer("CustomerRepo").Start(ctx, "CreateCustomer", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "customers"),
	))
	defer span.End()
	start := time.Now()
	defer func() { r.observe(ctx, start, err) }()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create customer: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var addressID *uuid.UUID
	if params.Address != nil {
		var id uuid.UUID
		err = tx.QueryRow(ctx,
			`INSERT INTO addresses (cep, number, complement, street, neighborhood, city, state)
             VALUES ($1, $2, $3, $4, $5, $6, $7)
             RETURNING id`,
			params.Address.Cep, params.Address.Number, params.Address.Complement,
			params.Address.Street, params.Address.Neighborhood, params.Address.City,
			strings.ToUpper(params.Address.State)).Scan(&id)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("create customer: insert address failed: %w", err)
		}
		addressID = &id
	}

	var customerID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO customers (name, email, cpf, phone, birth_date, address_id)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id`,
		params.Name, params.Email, params.Cpf, params.Phone, params.BirthDate, addressID).
		Scan(&customerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email or cpf already registered: %w", types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("create customer: insert failed: %w", err)
	}

	customer, err := scanCustomerRow(tx.QueryRow(ctx,
		"SELECT "+customerColumns+customerFrom+" WHERE c.id = $1", customerID))
	if err != nil {
		return nil, fmt.Errorf("create customer: reload failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create customer: commit tx: %w", err)
	}
	return customer, nil
}

func (r *PostgresCustomerRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (_ *types.Customer, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, start, err) }()

	customer, err := scanCustomerRow(r.pgpool.QueryRow(ctx,
		"SELECT "+customerColumns+customerFrom+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get customer by id: query failed: %w", err)
	}
	return customer, nil
}

// UpdateCustomer applies the non-nil fields of params. A nested address patch
// merges into the customer's existing address; when the customer has none, a
// fully specified address is inserted and linked.
func (r *PostgresCustomerRepo) UpdateCustomer(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (_ *types.Customer, err error) {
	ctx, span := otel.Tracer("CustomerRepo").Start(ctx, "UpdateCustomer", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "customers"),
	))
	defer span.End()
	start := time.Now()
	defer func() { r.observe(ctx, start, err) }()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("update customer: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var addressID *uuid.UUID
	err = tx.QueryRow(ctx, "SELECT address_id FROM customers WHERE id = $1", id).Scan(&addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("update customer: lookup failed: %w", err)
	}

	if params.Address != nil {
		addressID, err = r.mergeAddress(ctx, tx, addressID, *params.Address)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	setClauses, args := buildCustomerSet(params)
	if params.Address != nil {
		args = append(args, addressID)
		setClauses = append(setClauses, fmt.Sprintf("address_id = $%d", len(args)))
	}
	if len(setClauses) > 0 {
		args = append(args, time.Now())
		setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)))
		args = append(args, id)

		query := fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d",
			strings.Join(setClauses, ", "), len(args))
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("email or cpf already registered: %w", types.ErrConflict)
			}
			span.RecordError(err)
			return nil, fmt.Errorf("update customer: update failed: %w", err)
		}
	}

	customer, err := scanCustomerRow(tx.QueryRow(ctx,
		"SELECT "+customerColumns+customerFrom+" WHERE c.id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("update customer: reload failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("update customer: commit tx: %w", err)
	}
	return customer, nil
}

func (r *PostgresCustomerRepo) mergeAddress(ctx context.Context, tx pgx.Tx, addressID *uuid.UUID, patch types.UpdateAddressParams) (*uuid.UUID, error) {
	if addressID != nil {
		setClauses, args := address.BuildSetClauses(patch)
		if len(setClauses) == 0 {
			return addressID, nil
		}
		args = append(args, time.Now())
		setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)))
		args = append(args, *addressID)

		query := fmt.Sprintf("UPDATE addresses SET %s WHERE id = $%d",
			strings.Join(setClauses, ", "), len(args))
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("update customer: address merge failed: %w", err)
		}
		return addressID, nil
	}

	// No address yet, so the patch must carry every required field.
	if patch.Cep == nil || patch.Number == nil || patch.Street == nil ||
		patch.Neighborhood == nil || patch.City == nil || patch.State == nil {
		return nil, fmt.Errorf("customer has no address; a full address is required: %w", types.ErrBadRequest)
	}
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO addresses (cep, number, complement, street, neighborhood, city, state)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING id`,
		*patch.Cep, *patch.Number, patch.Complement, *patch.Street,
		*patch.Neighborhood, *patch.City, strings.ToUpper(*patch.State)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("update customer: insert address failed: %w", err)
	}
	return &id, nil
}

func buildCustomerSet(params types.UpdateCustomerParams) ([]string, []any) {
	var setClauses []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Cpf != nil {
		add("cpf", *params.Cpf)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.BirthDate != nil {
		add("birth_date", *params.BirthDate)
	}
	return setClauses, args
}

// DeleteCustomer removes the customer and its linked address, if any.
func (r *PostgresCustomerRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { r.observe(ctx, start, err) }()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete customer: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var addressID *uuid.UUID
	err = tx.QueryRow(ctx,
		"DELETE FROM customers WHERE id = $1 RETURNING address_id", id).Scan(&addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("delete customer: delete failed: %w", err)
	}
	if addressID != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM addresses WHERE id = $1", *addressID); err != nil {
			return fmt.Errorf("delete customer: delete address failed: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresCustomerRepo) GetAllCustomers(ctx context.Context) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+" ORDER BY c.created_at")
}

func (r *PostgresCustomerRepo) GetCustomersByName(ctx context.Context, name string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE c.name ILIKE '%' || $1 || '%' ORDER BY c.created_at", name)
}

func (r *PostgresCustomerRepo) GetCustomersByEmail(ctx context.Context, email string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE c.email ILIKE '%' || $1 || '%' ORDER BY c.created_at", email)
}

func (r *PostgresCustomerRepo) GetCustomersByCpf(ctx context.Context, cpf string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE c.cpf LIKE '%' || $1 || '%' ORDER BY c.created_at", cpf)
}

func (r *PostgresCustomerRepo) GetCustomersByCity(ctx context.Context, city string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE lower(a.city) = lower($1) ORDER BY c.created_at", city)
}

func (r *PostgresCustomerRepo) GetCustomersByState(ctx context.Context, state string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE lower(a.state) = lower($1) ORDER BY c.created_at", state)
}

func (r *PostgresCustomerRepo) GetCustomersByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Customer, error) {
	return r.queryCustomers(ctx,
		"SELECT "+customerColumns+customerFrom+
			" WHERE lower(a.city) = lower($1) AND lower(a.neighborhood) = lower($2) ORDER BY c.created_at",
		city, neighborhood)
}

func (r *PostgresCustomerRepo) GetAllCustomersPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "", nil, page)
}

func (r *PostgresCustomerRepo) GetCustomersByNamePaged(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "c.name ILIKE '%' || $1 || '%'", []any{name}, page)
}

func (r *PostgresCustomerRepo) GetCustomersByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "c.email ILIKE '%' || $1 || '%'", []any{email}, page)
}

func (r *PostgresCustomerRepo) GetCustomersByCpfPaged(ctx context.Context, cpf string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "c.cpf LIKE '%' || $1 || '%'", []any{cpf}, page)
}

func (r *PostgresCustomerRepo) GetCustomersByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "lower(a.city) = lower($1)", []any{city}, page)
}

func (r *PostgresCustomerRepo) GetCustomersByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx, "lower(a.state) = lower($1)", []any{state}, page)
}

func (r *PostgresCustomerRepo) GetCustomersByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return r.queryCustomersPaged(ctx,
		"lower(a.city) = lower($1) AND lower(a.neighborhood) = lower($2)",
		[]any{city, neighborhood}, page)
}

func (r *PostgresCustomerRepo) queryCustomers(ctx context.Context, query string, args ...any) (_ []types.Customer, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, start, err) }()

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []types.Customer
	for rows.Next() {
		customer, err := scanCustomerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

func (r *PostgresCustomerRepo) queryCustomersPaged(ctx context.Context, where string, args []any, page types.PageRequest) (*types.Page[types.Customer], error) {
	countQuery := "SELECT count(*)" + customerFrom
	listQuery := "SELECT " + customerColumns + customerFrom
	if where != "" {
		countQuery += " WHERE " + where
		listQuery += " WHERE " + where
	}

	var total int64
	if err := r.pgpool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count customers: query failed: %w", err)
	}

	listQuery += " ORDER BY " + orderClause(page) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	customers, err := r.queryCustomers(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	return types.NewPage(customers, page, total), nil
}

func orderClause(page types.PageRequest) string {
	if page.SortField == "" {
		return "c.created_at"
	}
	if page.SortDesc {
		return page.SortField + " DESC"
	}
	return page.SortField + " ASC"
}

// scanCustomerRow decodes one joined customer row. Address columns come back
// NULL when the customer has no address.
func scanCustomerRow(row pgx.Row) (*types.Customer, error) {
	var c types.Customer
	var (
		addrID           *uuid.UUID
		cep, number      *string
		complement       *string
		street, hood     *string
		city, state      *string
		created, updated *time.Time
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Cpf, &c.Phone, &c.BirthDate,
		&c.CreatedAt, &c.UpdatedAt,
		&addrID, &cep, &number, &complement, &street, &hood, &city, &state,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	if addrID != nil {
		c.Address = &types.Address{
			ID:           *addrID,
			Cep:          *cep,
			Number:       *number,
			Complement:   complement,
			Street:       *street,
			Neighborhood: *hood,
			City:         *city,
			State:        *state,
			CreatedAt:    *created,
			UpdatedAt:    *updated,
		}
	}
	c.Age = c.ComputeAge(time.Now())
	return &c, nil
}
