package customer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neoaplicacoes/customer-api/internal/api/address"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ CustomerService = (*CustomerServiceImpl)(nil)

// CustomerService holds the business rules for customer management.
type CustomerService interface {
	Create(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Customer, error)

	GetAll(ctx context.Context) ([]types.Customer, error)
	GetByName(ctx context.Context, name string) ([]types.Customer, error)
	GetByEmail(ctx context.Context, email string) ([]types.Customer, error)
	GetByCpf(ctx context.Context, cpf string) ([]types.Customer, error)
	GetByCity(ctx context.Context, city string) ([]types.Customer, error)
	GetByState(ctx context.Context, state string) ([]types.Customer, error)
	GetByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Customer, error)

	GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByNamePaged(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByCpfPaged(ctx context.Context, cpf string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Customer], error)
	GetByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Customer], error)
}

type CustomerServiceImpl struct {
	logger *slog.Logger
	repo   CustomerRepo
}

func NewCustomerService(repo CustomerRepo, logger *slog.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	cpfPattern   = regexp.MustCompile(`^\d{11}$`)
)

func validateCreateParams(params types.CreateCustomerParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return fmt.Errorf("name is required: %w", types.ErrBadRequest)
	}
	if !emailPattern.MatchString(params.Email) {
		return fmt.Errorf("invalid email address: %w", types.ErrBadRequest)
	}
	if !cpfPattern.MatchString(params.Cpf) {
		return fmt.Errorf("cpf must be exactly 11 digits: %w", types.ErrBadRequest)
	}
	if params.BirthDate.IsZero() || params.BirthDate.After(time.Now()) {
		return fmt.Errorf("birth_date must be a past date: %w", types.ErrBadRequest)
	}
	if params.Address != nil {
		if err := address.ValidateCreateParams(*params.Address); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdateParams(params types.UpdateCustomerParams) error {
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return fmt.Errorf("name must not be empty: %w", types.ErrBadRequest)
	}
	if params.Email != nil && !emailPattern.MatchString(*params.Email) {
		return fmt.Errorf("invalid email address: %w", types.ErrBadRequest)
	}
	if params.Cpf != nil && !cpfPattern.MatchString(*params.Cpf) {
		return fmt.Errorf("cpf must be exactly 11 digits: %w", types.ErrBadRequest)
	}
	if params.BirthDate != nil && (params.BirthDate.IsZero() || params.BirthDate.After(time.Now())) {
		return fmt.Errorf("birth_date must be a past date: %w", types.ErrBadRequest)
	}
	if params.Address != nil {
		if err := address.ValidateUpdateParams(*params.Address); err != nil {
			return err
		}
	}
	return nil
}

func (s *CustomerServiceImpl) Create(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error) {
	l := s.logger.With(slog.String("method", "Create"))
	if err := validateCreateParams(params); err != nil {
		return nil, err
	}
	customer, err := s.repo.CreateCustomer(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create customer", slog.Any("error", err))
		return nil, err
	}
	l.InfoContext(ctx, "Customer created",
		slog.String("customerID", customer.ID.String()))
	return customer, nil
}

func (s *CustomerServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error) {
	l := s.logger.With(slog.String("method", "Update"))
	if err := validateUpdateParams(params); err != nil {
		return nil, err
	}
	customer, err := s.repo.UpdateCustomer(ctx, id, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update customer",
			slog.String("customerID", id.String()), slog.Any("error", err))
		return nil, err
	}
	return customer, nil
}

func (s *CustomerServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	l := s.logger.With(slog.String("method", "Delete"))
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		l.WarnContext(ctx, "Failed to delete customer",
			slog.String("customerID", id.String()), slog.Any("error", err))
		return err
	}
	l.InfoContext(ctx, "Customer deleted", slog.String("customerID", id.String()))
	return nil
}

func (s *CustomerServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

func (s *CustomerServiceImpl) GetAll(ctx context.Context) ([]types.Customer, error) {
	return s.repo.GetAllCustomers(ctx)
}

func (s *CustomerServiceImpl) GetByName(ctx context.Context, name string) ([]types.Customer, error) {
	return s.repo.GetCustomersByName(ctx, name)
}

func (s *CustomerServiceImpl) GetByEmail(ctx context.Context, email string) ([]types.Customer, error) {
	return s.repo.GetCustomersByEmail(ctx, email)
}

func (s *CustomerServiceImpl) GetByCpf(ctx context.Context, cpf string) ([]types.Customer, error) {
	return s.repo.GetCustomersByCpf(ctx, cpf)
}

func (s *CustomerServiceImpl) GetByCity(ctx context.Context, city string) ([]types.Customer, error) {
	return s.repo.GetCustomersByCity(ctx, city)
}

func (s *CustomerServiceImpl) GetByState(ctx context.Context, state string) ([]types.Customer, error) {
	return s.repo.GetCustomersByState(ctx, state)
}

func (s *CustomerServiceImpl) GetByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Customer, error) {
	return s.repo.GetCustomersByCityAndNeighborhood(ctx, city, neighborhood)
}

func (s *CustomerServiceImpl) GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetAllCustomersPaged(ctx, page)
}

func (s *CustomerServiceImpl) GetByNamePaged(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByNamePaged(ctx, name, page)
}

func (s *CustomerServiceImpl) GetByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByEmailPaged(ctx, email, page)
}

func (s *CustomerServiceImpl) GetByCpfPaged(ctx context.Context, cpf string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByCpfPaged(ctx, cpf, page)
}

func (s *CustomerServiceImpl) GetByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByCityPaged(ctx, city, page)
}

func (s *CustomerServiceImpl) GetByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByStatePaged(ctx, state, page)
}

func (s *CustomerServiceImpl) GetByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.repo.GetCustomersByCityAndNeighborhoodPaged(ctx, city, neighborhood, page)
}
