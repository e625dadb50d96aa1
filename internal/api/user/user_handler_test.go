package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

func newUserRouter(repo UserRepo) chi.Router {
	h := NewHandlerImpl(NewUserService(repo, nil, discardLogger()), discardLogger())
	r := chi.NewRouter()
	r.Post("/users/register", h.Register)
	r.Get("/users", h.GetAll)
	r.Get("/users/paged", h.GetAllPaged)
	r.Get("/users/{id}", h.GetByID)
	r.Delete("/users/{id}", h.Delete)
	return r
}

func TestUserHandler_Register_Created(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("CreateUser", mock.Anything, "new@email.com", mock.Anything, types.RoleUser, true).
		Return(&types.User{ID: uuid.New(), Email: "new@email.com", Role: types.RoleUser, Active: true}, nil)

	router := newUserRouter(repo)
	req := httptest.NewRequest(http.MethodPost, "/users/register",
		strings.NewReader(`{"email":"new@email.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var user types.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "new@email.com", user.Email)
	assert.Empty(t, user.PasswordHash, "hash must never serialize")
}

func TestUserHandler_Register_MalformedBody(t *testing.T) {
	router := newUserRouter(new(MockUserRepo))
	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_GetByID_InvalidUUID(t *testing.T) {
	router := newUserRouter(new(MockUserRepo))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_GetByID_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepo)
	repo.On("GetUserByID", mock.Anything, id).Return(nil, types.ErrNotFound)

	router := newUserRouter(repo)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_Delete_NoContent(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepo)
	repo.On("DeleteUser", mock.Anything, id).Return(nil)

	router := newUserRouter(repo)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/"+id.String(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUserHandler_GetAllPaged_ParsesQuery(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("GetAllUsersPaged", mock.Anything, types.PageRequest{
		PageNumber: 2,
		Size:       25,
		SortField:  "email",
		SortDesc:   true,
	}).Return(types.NewPage([]types.User{}, types.PageRequest{PageNumber: 2, Size: 25}, 0), nil)

	router := newUserRouter(repo)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/users/paged?pageNumber=2&size=25&sort=email,desc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)

	var page types.Page[types.User]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.NotNil(t, page.Content, "content must serialize as [], not null")
}

func TestUserHandler_GetAll_EmptyResultIsArray(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("GetAllUsers", mock.Anything).Return(nil, nil)

	router := newUserRouter(repo)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
