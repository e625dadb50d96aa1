package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

type stubAuthService struct {
	token string
	user  *types.User
	err   error
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	return s.token, s.user, s.err
}

func postLogin(h *AuthHandlerImpl, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAuthService{
		token: "signed.token.value",
		user:  &types.User{Email: "user@email.com", Role: types.RoleUser, Active: true},
	}
	h := NewAuthHandlerImpl(svc, nil, discardLogger())

	rec := postLogin(h, `{"email":"user@email.com","password":"user123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.token.value", resp.Token)
	assert.Equal(t, "user@email.com", resp.User.Email)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandlerImpl(&stubAuthService{err: types.ErrUnauthenticated}, nil, discardLogger())

	rec := postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandlerImpl(&stubAuthService{}, nil, discardLogger())

	rec := postLogin(h, `{"email":"user@email.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	throttle := NewLoginThrottle(2, time.Minute)
	h := NewAuthHandlerImpl(&stubAuthService{err: types.ErrUnauthenticated}, throttle, discardLogger())

	rec := postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Third attempt inside the window hits the limit.
	rec = postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthHandler_Login_SuccessResetsThrottle(t *testing.T) {
	throttle := NewLoginThrottle(2, time.Minute)
	failing := &stubAuthService{err: types.ErrUnauthenticated}
	h := NewAuthHandlerImpl(failing, throttle, discardLogger())

	postLogin(h, `{"email":"user@email.com","password":"wrong"}`)

	h.authService = &stubAuthService{
		token: "signed.token.value",
		user:  &types.User{Email: "user@email.com", Role: types.RoleUser, Active: true},
	}
	rec := postLogin(h, `{"email":"user@email.com","password":"user123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The window restarts clean after a successful login.
	h.authService = failing
	rec = postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = postLogin(h, `{"email":"user@email.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
