package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, email, passwordHash, role string, active bool) (*types.User, error) {
	args := m.Called(ctx, email, passwordHash, role, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) GetAllUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserRepo) GetUsersByEmail(ctx context.Context, email string) ([]types.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserRepo) GetUsersByRole(ctx context.Context, role string) ([]types.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserRepo) GetUsersByActive(ctx context.Context, active bool) ([]types.User, error) {
	args := m.Called(ctx, active)
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserRepo) GetAllUsersPaged(ctx context.Context, page types.PageRequest) (*types.Page[types.User], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(*types.Page[types.User]), args.Error(1)
}

func (m *MockUserRepo) GetUsersByEmailPaged(ctx context.Context, email string, page types.PageRequest) (*types.Page[types.User], error) {
	args := m.Called(ctx, email, page)
	return args.Get(0).(*types.Page[types.User]), args.Error(1)
}

func (m *MockUserRepo) GetUsersByRolePaged(ctx context.Context, role string, page types.PageRequest) (*types.Page[types.User], error) {
	args := m.Called(ctx, role, page)
	return args.Get(0).(*types.Page[types.User]), args.Error(1)
}

func (m *MockUserRepo) GetUsersByActivePaged(ctx context.Context, active bool, page types.PageRequest) (*types.Page[types.User], error) {
	args := m.Called(ctx, active, page)
	return args.Get(0).(*types.Page[types.User]), args.Error(1)
}

func (m *MockUserRepo) UpdateUser(ctx context.Context, id uuid.UUID, email, passwordHash *string) (*types.User, error) {
	args := m.Called(ctx, id, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) UpdateUserAdmin(ctx context.Context, id uuid.UUID, params types.UpdateUserAdminParams) (*types.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserService_Register_HashesPasswordAndForcesDefaults(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("CreateUser", mock.Anything, "new@email.com",
		mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")) == nil
		}),
		types.RoleUser, true).
		Return(&types.User{Email: "new@email.com", Role: types.RoleUser, Active: true}, nil)

	svc := NewUserService(repo, nil, discardLogger())
	user, err := svc.Register(context.Background(), types.CreateUserParams{
		Email:    "new@email.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, user.Role)
	assert.True(t, user.Active)
	repo.AssertExpectations(t)
}

func TestUserService_Register_RejectsBadCredentials(t *testing.T) {
	svc := NewUserService(new(MockUserRepo), nil, discardLogger())

	_, err := svc.Register(context.Background(), types.CreateUserParams{
		Email:    "not-an-email",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, types.ErrBadRequest)

	_, err = svc.Register(context.Background(), types.CreateUserParams{
		Email:    "new@email.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestUserService_Register_PropagatesConflict(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, types.ErrConflict)

	svc := NewUserService(repo, nil, discardLogger())
	_, err := svc.Register(context.Background(), types.CreateUserParams{
		Email:    "dup@email.com",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestUserService_UpdateAdmin_NormalizesRole(t *testing.T) {
	id := uuid.New()

	for _, input := range []string{"admin", "ADMIN", "ROLE_ADMIN", "role_admin"} {
		repo := new(MockUserRepo)
		repo.On("UpdateUserAdmin", mock.Anything, id,
			mock.MatchedBy(func(p types.UpdateUserAdminParams) bool {
				return p.Role != nil && *p.Role == types.RoleAdmin
			})).
			Return(&types.User{Role: types.RoleAdmin, Active: true}, nil)

		svc := NewUserService(repo, nil, discardLogger())
		role := input
		_, err := svc.UpdateAdmin(context.Background(), id, types.UpdateUserAdminParams{Role: &role})
		require.NoError(t, err, "input %q", input)
		repo.AssertExpectations(t)
	}
}

func TestUserService_UpdateAdmin_RejectsUnknownRole(t *testing.T) {
	svc := NewUserService(new(MockUserRepo), nil, discardLogger())
	role := "SUPERUSER"
	_, err := svc.UpdateAdmin(context.Background(), uuid.New(), types.UpdateUserAdminParams{Role: &role})
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestUserService_Update_HashesNewPassword(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepo)
	repo.On("UpdateUser", mock.Anything, id, (*string)(nil),
		mock.MatchedBy(func(hash *string) bool {
			return hash != nil && bcrypt.CompareHashAndPassword([]byte(*hash), []byte("newpass1")) == nil
		})).
		Return(&types.User{Email: "user@email.com"}, nil)

	svc := NewUserService(repo, nil, discardLogger())
	pw := "newpass1"
	_, err := svc.Update(context.Background(), id, types.UpdateUserParams{Password: &pw})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
