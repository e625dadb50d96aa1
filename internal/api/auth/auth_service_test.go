package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeUser(t *testing.T, password string) *types.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &types.User{
		ID:           uuid.New(),
		Email:        "user@email.com",
		PasswordHash: string(hash),
		Role:         types.RoleUser,
		Active:       true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(MockAuthRepo)
	user := activeUser(t, "user123")
	repo.On("GetUserByEmail", mock.Anything, "user@email.com").Return(user, nil)

	codec := newTestCodec(t, time.Hour)
	svc := NewAuthService(repo, codec, nil, discardLogger())

	token, got, err := svc.Login(context.Background(), "user@email.com", "user123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.Email, got.Email)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Subject)
	assert.Equal(t, user.Role, claims.Role)
	repo.AssertExpectations(t)
}

// Unknown email, wrong password and disabled account must be
// indistinguishable to the caller.
func TestAuthService_Login_UniformRejection(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "ghost@email.com").Return(nil, types.ErrNotFound)
		svc := NewAuthService(repo, codec, nil, discardLogger())

		_, _, err := svc.Login(context.Background(), "ghost@email.com", "whatever")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "user@email.com").Return(activeUser(t, "user123"), nil)
		svc := NewAuthService(repo, codec, nil, discardLogger())

		_, _, err := svc.Login(context.Background(), "user@email.com", "not-the-password")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("inactive account", func(t *testing.T) {
		user := activeUser(t, "user123")
		user.Active = false
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "user@email.com").Return(user, nil)
		svc := NewAuthService(repo, codec, nil, discardLogger())

		_, _, err := svc.Login(context.Background(), "user@email.com", "user123")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})
}

func TestAuthService_Login_RepoFailureIsNotUnauthorized(t *testing.T) {
	repo := new(MockAuthRepo)
	repo.On("GetUserByEmail", mock.Anything, "user@email.com").Return(nil, assert.AnError)
	svc := NewAuthService(repo, newTestCodec(t, time.Hour), nil, discardLogger())

	_, _, err := svc.Login(context.Background(), "user@email.com", "user123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrUnauthenticated)
}
