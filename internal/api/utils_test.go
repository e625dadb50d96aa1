package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

func TestParsePageRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/customers/paged", nil)
	page := ParsePageRequest(req, map[string]string{"name": "name"})

	assert.Equal(t, 0, page.PageNumber)
	assert.Equal(t, defaultPageSize, page.Size)
	assert.Empty(t, page.SortField)
}

func TestParsePageRequest_CapsSizeAndIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/customers/paged?pageNumber=-3&size=5000", nil)
	page := ParsePageRequest(req, nil)

	assert.Equal(t, 0, page.PageNumber, "negative page numbers ignored")
	assert.Equal(t, maxPageSize, page.Size)

	req = httptest.NewRequest(http.MethodGet, "/customers/paged?size=abc", nil)
	assert.Equal(t, defaultPageSize, ParsePageRequest(req, nil).Size)
}

func TestParsePageRequest_SortWhitelist(t *testing.T) {
	sortable := map[string]string{"createdAt": "c.created_at"}

	req := httptest.NewRequest(http.MethodGet, "/customers/paged?sort=createdAt,desc", nil)
	page := ParsePageRequest(req, sortable)
	assert.Equal(t, "c.created_at", page.SortField)
	assert.True(t, page.SortDesc)

	// Non-whitelisted properties never reach the SQL layer.
	req = httptest.NewRequest(http.MethodGet, "/customers/paged?sort=password_hash,desc", nil)
	page = ParsePageRequest(req, sortable)
	assert.Empty(t, page.SortField)
}

func TestErrorResponseFromErr_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{types.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("create user: %w", types.ErrConflict), http.StatusConflict},
		{types.ErrUnauthenticated, http.StatusUnauthorized},
		{types.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("cpf must be 11 digits: %w", types.ErrBadRequest), http.StatusBadRequest},
		{types.ErrTooManyRequests, http.StatusTooManyRequests},
		{types.ErrInternal, http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		ErrorResponseFromErr(rec, req, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestErrorResponseFromErr_UnexpectedErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	ErrorResponseFromErr(rec, req, fmt.Errorf("pq: connection refused to 10.1.2.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.1.2.3", "internals must not leak to clients")
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	decode := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		var p payload
		return DecodeJSONBody(httptest.NewRecorder(), req, &p)
	}

	require.NoError(t, decode(`{"email":"a@b.com"}`))
	assert.Error(t, decode(``), "empty body")
	assert.Error(t, decode(`{broken`), "malformed JSON")
	assert.Error(t, decode(`{"email":"a@b.com"}{"email":"c@d.com"}`), "trailing data")
	assert.Error(t, decode(`{"unknown":"field"}`), "unknown keys rejected")
	assert.Error(t, decode(`{"email":42}`), "wrong type")
}
