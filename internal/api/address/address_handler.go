package address

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
	GetByCep(w http.ResponseWriter, r *http.Request)
	GetByCity(w http.ResponseWriter, r *http.Request)
	GetByState(w http.ResponseWriter, r *http.Request)
	GetByNeighborhood(w http.ResponseWriter, r *http.Request)
	GetByCityAndNeighborhood(w http.ResponseWriter, r *http.Request)
	GetByStreet(w http.ResponseWriter, r *http.Request)
	GetByCityAndStreet(w http.ResponseWriter, r *http.Request)
	GetAllPaged(w http.ResponseWriter, r *http.Request)
	GetByCepPaged(w http.ResponseWriter, r *http.Request)
	GetByCityPaged(w http.ResponseWriter, r *http.Request)
	GetByStatePaged(w http.ResponseWriter, r *http.Request)
	GetByNeighborhoodPaged(w http.ResponseWriter, r *http.Request)
	GetByCityAndNeighborhoodPaged(w http.ResponseWriter, r *http.Request)
	GetByStreetPaged(w http.ResponseWriter, r *http.Request)
	GetByCityAndStreetPaged(w http.ResponseWriter, r *http.Request)
}

var sortableColumns = map[string]string{
	"cep":          "cep",
	"street":       "street",
	"neighborhood": "neighborhood",
	"city":         "city",
	"state":        "state",
	"createdAt":    "created_at",
}

type HandlerImpl struct {
	addressService AddressService
	logger         *slog.Logger
}

// NewHandlerImpl creates a new address handler instance.
func NewHandlerImpl(addressService AddressService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		addressService: addressService,
		logger:         logger,
	}
}

func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params types.CreateAddressParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	addr, err := h.addressService.Create(ctx, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, addr)
}

func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var params types.UpdateAddressParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	addr, err := h.addressService.Update(ctx, id, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, addr)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.addressService.Delete(r.Context(), id); err != nil {
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
	addr, err := h.addressService.GetByID(r.Context(), id)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, addr)
}

func (h *HandlerImpl) GetAll(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addressService.GetAll(r.Context())
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, addresses)
}

func (h *HandlerImpl) GetByCep(w http.ResponseWriter, r *http.Request) {
	cep, ok := requireQuery(w, r, "cep")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByCep(r.Context(), cep)
	})
}

func (h *HandlerImpl) GetByCity(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByCity(r.Context(), city)
	})
}

func (h *HandlerImpl) GetByState(w http.ResponseWriter, r *http.Request) {
	state, ok := requireQuery(w, r, "state")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByState(r.Context(), state)
	})
}

func (h *HandlerImpl) GetByNeighborhood(w http.ResponseWriter, r *http.Request) {
	neighborhood, ok := requireQuery(w, r, "neighborhood")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByNeighborhood(r.Context(), neighborhood)
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
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByCityAndNeighborhood(r.Context(), city, neighborhood)
	})
}

func (h *HandlerImpl) GetByStreet(w http.ResponseWriter, r *http.Request) {
	street, ok := requireQuery(w, r, "street")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByStreet(r.Context(), street)
	})
}

func (h *HandlerImpl) GetByCityAndStreet(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	street, ok := requireQuery(w, r, "street")
	if !ok {
		return
	}
	h.list(w, r, func() ([]types.Address, error) {
		return h.addressService.GetByCityAndStreet(r.Context(), city, street)
	})
}

func (h *HandlerImpl) GetAllPaged(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetAllPaged(r.Context(), page)
	})
}

func (h *HandlerImpl) GetByCepPaged(w http.ResponseWriter, r *http.Request) {
	cep, ok := requireQuery(w, r, "cep")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByCepPaged(r.Context(), cep, page)
	})
}

func (h *HandlerImpl) GetByCityPaged(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByCityPaged(r.Context(), city, page)
	})
}

func (h *HandlerImpl) GetByStatePaged(w http.ResponseWriter, r *http.Request) {
	state, ok := requireQuery(w, r, "state")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByStatePaged(r.Context(), state, page)
	})
}

func (h *HandlerImpl) GetByNeighborhoodPaged(w http.ResponseWriter, r *http.Request) {
	neighborhood, ok := requireQuery(w, r, "neighborhood")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByNeighborhoodPaged(r.Context(), neighborhood, page)
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
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByCityAndNeighborhoodPaged(r.Context(), city, neighborhood, page)
	})
}

func (h *HandlerImpl) GetByStreetPaged(w http.ResponseWriter, r *http.Request) {
	street, ok := requireQuery(w, r, "street")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByStreetPaged(r.Context(), street, page)
	})
}

func (h *HandlerImpl) GetByCityAndStreetPaged(w http.ResponseWriter, r *http.Request) {
	city, ok := requireQuery(w, r, "city")
	if !ok {
		return
	}
	street, ok := requireQuery(w, r, "street")
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	h.page(w, r, func() (*types.Page[types.Address], error) {
		return h.addressService.GetByCityAndStreetPaged(r.Context(), city, street, page)
	})
}

func (h *HandlerImpl) list(w http.ResponseWriter, r *http.Request, fn func() ([]types.Address, error)) {
	addresses, err := fn()
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	if addresses == nil {
		addresses = []types.Address{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, addresses)
}

func (h *HandlerImpl) page(w http.ResponseWriter, r *http.Request, fn func() (*types.Page[types.Address], error)) {
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
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid address ID format")
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
