package user

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neoaplicacoes/customer-api/internal/api"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UpdateAdmin(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetAll(w http.ResponseWriter, r *http.Request)
	GetByEmail(w http.ResponseWriter, r *http.Request)
	GetByRole(w http.ResponseWriter, r *http.Request)
	GetByActive(w http.ResponseWriter, r *http.Request)
	GetAllPaged(w http.ResponseWriter, r *http.Request)
	GetByEmailPaged(w http.ResponseWriter, r *http.Request)
	GetByRolePaged(w http.ResponseWriter, r *http.Request)
	GetByActivePaged(w http.ResponseWriter, r *http.Request)
}

// sortableColumns whitelists sort properties accepted on paged endpoints.
var sortableColumns = map[string]string{
	"email":     "email",
	"role":      "role",
	"active":    "active",
	"createdAt": "created_at",
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user handler instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// Register handles public self-registration. Role and active flag are not
// client-controlled.
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "Register", h.userService.Register)
}

// Create is the admin-only user creation endpoint.
func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "Create", h.userService.Create)
}

func (h *HandlerImpl) create(w http.ResponseWriter, r *http.Request, name string,
	fn func(ctx context.Context, params types.CreateUserParams) (*types.User, error)) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", name))

	var params types.CreateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := fn(ctx, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var params types.UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Update(ctx, id, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

func (h *HandlerImpl) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateAdmin"))

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var params types.UpdateUserAdminParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.UpdateAdmin(ctx, id, params)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
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
	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

func (h *HandlerImpl) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	writeUserList(w, r, users)
}

func (h *HandlerImpl) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}
	users, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	writeUserList(w, r, users)
}

func (h *HandlerImpl) GetByRole(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "role query parameter is required")
		return
	}
	users, err := h.userService.GetByRole(r.Context(), role)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	writeUserList(w, r, users)
}

func (h *HandlerImpl) GetByActive(w http.ResponseWriter, r *http.Request) {
	active, ok := parseActive(w, r)
	if !ok {
		return
	}
	users, err := h.userService.GetByActive(r.Context(), active)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	writeUserList(w, r, users)
}

func (h *HandlerImpl) GetAllPaged(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePageRequest(r, sortableColumns)
	result, err := h.userService.GetAllPaged(r.Context(), page)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) GetByEmailPaged(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	result, err := h.userService.GetByEmailPaged(r.Context(), email, page)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) GetByRolePaged(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "role query parameter is required")
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	result, err := h.userService.GetByRolePaged(r.Context(), role, page)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) GetByActivePaged(w http.ResponseWriter, r *http.Request) {
	active, ok := parseActive(w, r)
	if !ok {
		return
	}
	page := api.ParsePageRequest(r, sortableColumns)
	result, err := h.userService.GetByActivePaged(r.Context(), active, page)
	if err != nil {
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// writeUserList keeps empty results serializing as [] rather than null.
func writeUserList(w http.ResponseWriter, r *http.Request, users []types.User) {
	if users == nil {
		users = []types.User{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

func parseActive(w http.ResponseWriter, r *http.Request) (bool, bool) {
	v := r.URL.Query().Get("active")
	if v == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "active query parameter is required")
		return false, false
	}
	active, err := strconv.ParseBool(v)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "active must be true or false")
		return false, false
	}
	return active, true
}
