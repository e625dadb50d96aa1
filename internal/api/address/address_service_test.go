package address

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

type stubAddressRepo struct {
	AddressRepo
	createFn func(ctx context.Context, params types.CreateAddressParams) (*types.Address, error)
	byCepFn  func(ctx context.Context, cep string) ([]types.Address, error)
}

func (s *stubAddressRepo) CreateAddress(ctx context.Context, params types.CreateAddressParams) (*types.Address, error) {
	return s.createFn(ctx, params)
}

func (s *stubAddressRepo) GetAddressesByCep(ctx context.Context, cep string) ([]types.Address, error) {
	return s.byCepFn(ctx, cep)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validParams() types.CreateAddressParams {
	return types.CreateAddressParams{
		Cep:          "01001000",
		Number:       "100",
		Street:       "Praca da Se",
		Neighborhood: "Se",
		City:         "Sao Paulo",
		State:        "SP",
	}
}

func TestValidateCep(t *testing.T) {
	assert.True(t, ValidateCep("01001000"))
	assert.False(t, ValidateCep("01001-00"), "separators are not accepted")
	assert.False(t, ValidateCep("0100100"))
	assert.False(t, ValidateCep("010010001"))
	assert.False(t, ValidateCep("abcdefgh"))
}

func TestValidateState(t *testing.T) {
	assert.True(t, ValidateState("SP"))
	assert.True(t, ValidateState("rj"))
	assert.False(t, ValidateState("S"))
	assert.False(t, ValidateState("SPX"))
	assert.False(t, ValidateState("S1"))
}

func TestAddressService_Create_Success(t *testing.T) {
	repo := &stubAddressRepo{
		createFn: func(ctx context.Context, params types.CreateAddressParams) (*types.Address, error) {
			return &types.Address{ID: uuid.New(), Cep: params.Cep, City: params.City, State: params.State}, nil
		},
	}
	svc := NewAddressService(repo, discardLogger())

	addr, err := svc.Create(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, "01001000", addr.Cep)
}

func TestAddressService_Create_Validation(t *testing.T) {
	svc := NewAddressService(&stubAddressRepo{}, discardLogger())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*types.CreateAddressParams)
	}{
		{"bad cep", func(p *types.CreateAddressParams) { p.Cep = "123" }},
		{"empty street", func(p *types.CreateAddressParams) { p.Street = "" }},
		{"empty city", func(p *types.CreateAddressParams) { p.City = "  " }},
		{"bad state", func(p *types.CreateAddressParams) { p.State = "ABC" }},
		{"empty number", func(p *types.CreateAddressParams) { p.Number = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, err := svc.Create(ctx, params)
			assert.ErrorIs(t, err, types.ErrBadRequest)
		})
	}
}

func TestAddressService_GetByCep_RejectsMalformedCep(t *testing.T) {
	called := false
	repo := &stubAddressRepo{
		byCepFn: func(ctx context.Context, cep string) ([]types.Address, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewAddressService(repo, discardLogger())

	_, err := svc.GetByCep(context.Background(), "01001-000")
	assert.ErrorIs(t, err, types.ErrBadRequest)
	assert.False(t, called, "repository must not be queried with a bad cep")

	_, err = svc.GetByCep(context.Background(), "01001000")
	assert.NoError(t, err)
	assert.True(t, called)
}
