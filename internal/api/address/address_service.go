package address

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ AddressService = (*AddressServiceImpl)(nil)

// AddressService holds the business rules for address management.
type AddressService interface {
	Create(ctx context.Context, params types.CreateAddressParams) (*types.Address, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateAddressParams) (*types.Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Address, error)

	GetAll(ctx context.Context) ([]types.Address, error)
	GetByCep(ctx context.Context, cep string) ([]types.Address, error)
	GetByCity(ctx context.Context, city string) ([]types.Address, error)
	GetByState(ctx context.Context, state string) ([]types.Address, error)
	GetByNeighborhood(ctx context.Context, neighborhood string) ([]types.Address, error)
	GetByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Address, error)
	GetByStreet(ctx context.Context, street string) ([]types.Address, error)
	GetByCityAndStreet(ctx context.Context, city, street string) ([]types.Address, error)

	GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Address], error)
	GetByCepPaged(ctx context.Context, cep string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByNeighborhoodPaged(ctx context.Context, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByStreetPaged(ctx context.Context, street string, page types.PageRequest) (*types.Page[types.Address], error)
	GetByCityAndStreetPaged(ctx context.Context, city, street string, page types.PageRequest) (*types.Page[types.Address], error)
}

type AddressServiceImpl struct {
	logger *slog.Logger
	repo   AddressRepo
}

func NewAddressService(repo AddressRepo, logger *slog.Logger) *AddressServiceImpl {
	return &AddressServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

var cepPattern = regexp.MustCompile(`^\d{8}$`)

// ValidateCep reports whether cep is exactly eight digits.
func ValidateCep(cep string) bool {
	return cepPattern.MatchString(cep)
}

// ValidateState reports whether state is a two-letter code.
func ValidateState(state string) bool {
	if len(state) != 2 {
		return false
	}
	for _, c := range state {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// ValidateCreateParams checks the required fields of a new address.
func ValidateCreateParams(params types.CreateAddressParams) error {
	if !ValidateCep(params.Cep) {
		return fmt.Errorf("cep must be exactly 8 digits: %w", types.ErrBadRequest)
	}
	if strings.TrimSpace(params.Street) == "" ||
		strings.TrimSpace(params.Neighborhood) == "" ||
		strings.TrimSpace(params.City) == "" {
		return fmt.Errorf("street, neighborhood and city are required: %w", types.ErrBadRequest)
	}
	if !ValidateState(params.State) {
		return fmt.Errorf("state must be a 2-letter code: %w", types.ErrBadRequest)
	}
	if strings.TrimSpace(params.Number) == "" {
		return fmt.Errorf("number is required: %w", types.ErrBadRequest)
	}
	return nil
}

// ValidateUpdateParams checks only the fields present in a partial update.
func ValidateUpdateParams(params types.UpdateAddressParams) error {
	if params.Cep != nil && !ValidateCep(*params.Cep) {
		return fmt.Errorf("cep must be exactly 8 digits: %w", types.ErrBadRequest)
	}
	if params.State != nil && !ValidateState(*params.State) {
		return fmt.Errorf("state must be a 2-letter code: %w", types.ErrBadRequest)
	}
	if params.Number != nil && strings.TrimSpace(*params.Number) == "" {
		return fmt.Errorf("number is required: %w", types.ErrBadRequest)
	}
	return nil
}

func (s *AddressServiceImpl) Create(ctx context.Context, params types.CreateAddressParams) (*types.Address, error) {
	l := s.logger.With(slog.String("method", "Create"))
	if err := ValidateCreateParams(params); err != nil {
		return nil, err
	}
	addr, err := s.repo.CreateAddress(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create address", slog.Any("error", err))
		return nil, err
	}
	l.InfoContext(ctx, "Address created", slog.String("addressID", addr.ID.String()))
	return addr, nil
}

func (s *AddressServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateAddressParams) (*types.Address, error) {
	l := s.logger.With(slog.String("method", "Update"))
	if err := ValidateUpdateParams(params); err != nil {
		return nil, err
	}
	addr, err := s.repo.UpdateAddress(ctx, id, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update address",
			slog.String("addressID", id.String()), slog.Any("error", err))
		return nil, err
	}
	return addr, nil
}

func (s *AddressServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	l := s.logger.With(slog.String("method", "Delete"))
	if err := s.repo.DeleteAddress(ctx, id); err != nil {
		l.WarnContext(ctx, "Failed to delete address",
			slog.String("addressID", id.String()), slog.Any("error", err))
		return err
	}
	l.InfoContext(ctx, "Address deleted", slog.String("addressID", id.String()))
	return nil
}

func (s *AddressServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Address, error) {
	return s.repo.GetAddressByID(ctx, id)
}

func (s *AddressServiceImpl) GetAll(ctx context.Context) ([]types.Address, error) {
	return s.repo.GetAllAddresses(ctx)
}

func (s *AddressServiceImpl) GetByCep(ctx context.Context, cep string) ([]types.Address, error) {
	if !ValidateCep(cep) {
		return nil, fmt.Errorf("cep must be exactly 8 digits: %w", types.ErrBadRequest)
	}
	return s.repo.GetAddressesByCep(ctx, cep)
}

func (s *AddressServiceImpl) GetByCity(ctx context.Context, city string) ([]types.Address, error) {
	return s.repo.GetAddressesByCity(ctx, city)
}

func (s *AddressServiceImpl) GetByState(ctx context.Context, state string) ([]types.Address, error) {
	return s.repo.GetAddressesByState(ctx, state)
}

func (s *AddressServiceImpl) GetByNeighborhood(ctx context.Context, neighborhood string) ([]types.Address, error) {
	return s.repo.GetAddressesByNeighborhood(ctx, neighborhood)
}

func (s *AddressServiceImpl) GetByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Address, error) {
	return s.repo.GetAddressesByCityAndNeighborhood(ctx, city, neighborhood)
}

func (s *AddressServiceImpl) GetByStreet(ctx context.Context, street string) ([]types.Address, error) {
	return s.repo.GetAddressesByStreet(ctx, street)
}

func (s *AddressServiceImpl) GetByCityAndStreet(ctx context.Context, city, street string) ([]types.Address, error) {
	return s.repo.GetAddressesByCityAndStreet(ctx, city, street)
}

func (s *AddressServiceImpl) GetAllPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAllAddressesPaged(ctx, page)
}

func (s *AddressServiceImpl) GetByCepPaged(ctx context.Context, cep string, page types.PageRequest) (*types.Page[types.Address], error) {
	if !ValidateCep(cep) {
		return nil, fmt.Errorf("cep must be exactly 8 digits: %w", types.ErrBadRequest)
	}
	return s.repo.GetAddressesByCepPaged(ctx, cep, page)
}

func (s *AddressServiceImpl) GetByCityPaged(ctx context.Context, city string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByCityPaged(ctx, city, page)
}

func (s *AddressServiceImpl) GetByStatePaged(ctx context.Context, state string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByStatePaged(ctx, state, page)
}

func (s *AddressServiceImpl) GetByNeighborhoodPaged(ctx context.Context, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByNeighborhoodPaged(ctx, neighborhood, page)
}

func (s *AddressServiceImpl) GetByCityAndNeighborhoodPaged(ctx context.Context, city, neighborhood string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByCityAndNeighborhoodPaged(ctx, city, neighborhood, page)
}

func (s *AddressServiceImpl) GetByStreetPaged(ctx context.Context, street string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByStreetPaged(ctx, street, page)
}

func (s *AddressServiceImpl) GetByCityAndStreetPaged(ctx context.Context, city, street string, page types.PageRequest) (*types.Page[types.Address], error) {
	return s.repo.GetAddressesByCityAndStreetPaged(ctx, city, street, page)
}
