package customer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

type stubCustomerService struct {
	CustomerService
	createFn     func(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error)
	byIDFn       func(ctx context.Context, id uuid.UUID) (*types.Customer, error)
	byCityFn     func(ctx context.Context, city string) ([]types.Customer, error)
	byNamePgFn   func(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error)
	cityHoodFn   func(ctx context.Context, city, neighborhood string) ([]types.Customer, error)
}

func (s *stubCustomerService) Create(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error) {
	return s.createFn(ctx, params)
}

func (s *stubCustomerService) GetByID(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
	return s.byIDFn(ctx, id)
}

func (s *stubCustomerService) GetByCity(ctx context.Context, city string) ([]types.Customer, error) {
	return s.byCityFn(ctx, city)
}

func (s *stubCustomerService) GetByNamePaged(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error) {
	return s.byNamePgFn(ctx, name, page)
}

func (s *stubCustomerService) GetByCityAndNeighborhood(ctx context.Context, city, neighborhood string) ([]types.Customer, error) {
	return s.cityHoodFn(ctx, city, neighborhood)
}

func newCustomerRouter(svc CustomerService) chi.Router {
	h := NewHandlerImpl(svc, discardLogger())
	r := chi.NewRouter()
	r.Post("/customers", h.Create)
	r.Get("/customers/search/city", h.GetByCity)
	r.Get("/customers/search/name/paged", h.GetByNamePaged)
	r.Get("/customers/search/city-neighborhood", h.GetByCityAndNeighborhood)
	r.Get("/customers/{id}", h.GetByID)
	return r
}

func TestCustomerHandler_Create_Created(t *testing.T) {
	svc := &stubCustomerService{
		createFn: func(ctx context.Context, params types.CreateCustomerParams) (*types.Customer, error) {
			return &types.Customer{ID: uuid.New(), Name: params.Name, Email: params.Email, Cpf: params.Cpf, Age: 36}, nil
		},
	}
	router := newCustomerRouter(svc)

	body := `{"name":"Maria Silva","email":"maria@email.com","cpf":"12345678901","birth_date":"1990-05-20T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var customer types.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))
	assert.Equal(t, "Maria Silva", customer.Name)
	assert.Equal(t, 36, customer.Age)
}

func TestCustomerHandler_SearchCity_RequiresParam(t *testing.T) {
	router := newCustomerRouter(&stubCustomerService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/search/city", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerHandler_SearchCityNeighborhood_RequiresBothParams(t *testing.T) {
	svc := &stubCustomerService{
		cityHoodFn: func(ctx context.Context, city, neighborhood string) ([]types.Customer, error) {
			return []types.Customer{}, nil
		},
	}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/customers/search/city-neighborhood?city=Sao%20Paulo", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/customers/search/city-neighborhood?city=Sao%20Paulo&neighborhood=Se", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerHandler_SearchNamePaged_PassesPageRequest(t *testing.T) {
	var got types.PageRequest
	svc := &stubCustomerService{
		byNamePgFn: func(ctx context.Context, name string, page types.PageRequest) (*types.Page[types.Customer], error) {
			got = page
			return types.NewPage([]types.Customer{}, page, 0), nil
		},
	}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/customers/search/name/paged?name=maria&pageNumber=1&size=20&sort=name,asc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, got.PageNumber)
	assert.Equal(t, 20, got.Size)
	assert.Equal(t, "c.name", got.SortField)
	assert.False(t, got.SortDesc)
}

func TestCustomerHandler_GetByID_NotFound(t *testing.T) {
	svc := &stubCustomerService{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
			return nil, types.ErrNotFound
		},
	}
	router := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerHandler_GetByCity_EmptyResultIsArray(t *testing.T) {
	svc := &stubCustomerService{
		byCityFn: func(ctx context.Context, city string) ([]types.Customer, error) {
			return nil, nil
		},
	}
	r := newCustomerRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/search/city?city=Nowhere", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
