package customer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neoaplicacoes/customer-api/internal/api"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetAll(w http.ResponseWriter, r *http.Request)
	GetByName(w http.ResponseWriter, r *http.Request)
	GetByEmail(w http.ResponseWriter, r *http.Request)
	GetByCpf(w http.ResponseWriter, r *http.Request)
	GetByCity(w http.ResponseWriter, r *http.Request)
	GetByState(w http.ResponseWriter, r *http.Request)
	GetByCityAndNeighborhood(w http.ResponseWriter, r *http.Request)
	GetAllPaged(w http.ResponseWriter, r *http.Request)
	GetByNamePaged(w http.ResponseWriter, r *http.Request)
	GetByEmailPaged(w http.ResponseWriter, r *http.Request)
	GetByCpfPaged(w http.ResponseWriter, r *http.Request)
	GetByCityPaged(w http.ResponseWriter, r *http.Request)
	GetByStatePaged(w http.ResponseWriter, r *http.Request)
	GetByCityAndNeighborhoodPaged(w http.ResponseWriter, r *http.Request)
}

// Sort properties map onto the joined query's aliases.
var sortableColumns = map[string]string{
	"name":      "c.name",
	"email":     "c.email",
	"cpf":       "c.cpf",
	"birthDate": "c.birth_date",
	"createdAt": "c.created_at",
	"city":      "a.city",
	"state":     "a.state",
}

type HandlerImpl struct {
	customerService CustomerService
	logger          *slog.Logger
}

// NewHandlerImpl creates a new customer handler instance.
func NewHandlerImpl(customerService CustomerService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		customerService: customerService,
		logger:          logger,
	}
}

func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params types.CreateCustomerParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customerService.Create(ctx, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, customer)
}

func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var params types.UpdateCustomerParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customerService.Update(ctx, id, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, customer)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.customerService.Delete(r.Context(), id); err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, customer)
}

func (h *HandlerImpl) GetAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetAll(r.Context())
	})
}

func (h *HandlerImpl) GetByName(w http.ResponseWriter, r *http.Request) {
	name, ok := requireQuery(w, r, "name")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByName(r.Context(), name)
	})
}

func (h *HandlerImpl) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := requireQuery(w, r, "email")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByEmail(r.Context(), email)
	})
}

func (h *HandlerImpl) GetByCpf(w http.ResponseWriter, r *http.Request) {
	cpf, ok := requireQuery(w, r, "cpf")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByCpf(r.Context(), cpf)
	})
}

func (h *HandlerImpl) GetByCity(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByCity(r.Context(), city)
	})
}

func (h *HandlerImpl) GetByState(w http.ResponseWriter, r *http.Request) {
	state, ok := requireQuery(w, r, "state")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByState(r.Context(), state)
	})
}

func (h *HandlerImpl) GetByCityAndNeighborhood(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	neighborhood, ok := requireQuery(w, r, "neighborhood")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Customer, error) {
		return h.customerService.GetByCityAndNeighborhood(r.Context(), city, neighborhood)
	})
}

func (h *HandlerImpl) GetAllPaged(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetAllPaged(r.Context(), page)
	})
}

func (h *HandlerImpl) GetByNamePaged(w http.ResponseWriter, r *http.Request) {
	name, ok := requireQuery(w, r, "name")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByNamePaged(r.Context(), name, page)
	})
}

func (h *HandlerImpl) GetByEmailPaged(w http.ResponseWriter, r *http.Request) {
	email, ok := requireQuery(w, r, "email")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByEmailPaged(r.Context(), email, page)
	})
}

func (h *HandlerImpl) GetByCpfPaged(w http.ResponseWriter, r *http.Request) {
	cpf, ok := requireQuery(w, r, "cpf")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByCpfPaged(r.Context(), cpf, page)
	})
}

func (h *HandlerImpl) GetByCityPaged(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByCityPaged(r.Context(), city, page)
	})
}

func (h *HandlerImpl) GetByStatePaged(w http.ResponseWriter, r *http.Request) {
	state, ok := requireQuery(w, r, "state")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByStatePaged(r.Context(), state, page)
	})
}

func (h *HandlerImpl) GetByCityAndNeighborhoodPaged(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	neighborhood, ok := requireQuery(w, r, "neighborhood")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Customer], error) {
		return h.customerService.GetByCityAndNeighborhoodPaged(r.Context(), city, neighborhood, page)
	})
}

func (h *HandlerImpl) list(w http.ResponseWriter, r *http.Request, fn func() ([]types.Customer, error)) {
	customers, err := fn()
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	if customers == nil {
		customers = []types.Customer{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, customers)
}

func (h *HandlerImpl) page(w http.ResponseWriter, r *http.Request, fn func() (*types.Page[types.Customer], error)) {
	result, err := fn()
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid customer ID format")
		return uuid.Nil, false
	}
	return id, true
}

func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, name+" query parameter is required")
		return "", false
	}
	return v, true
}
