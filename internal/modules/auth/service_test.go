package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"detailbook/internal/domain"
	"detailbook/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil && args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type staticRolePolicy struct {
	admins map[string]bool
}

func (p staticRolePolicy) RoleFor(email string) domain.Role {
	if p.admins[email] {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

type stubJWT struct{}

func (stubJWT) GenerateToken(userID int64, role string) (string, error) {
	return "token", nil
}

func TestRegister_AssignsRoleFromPolicy(t *testing.T) {
	users := new(MockUserRepository)
	policy := staticRolePolicy{admins: map[string]bool{"boss@detailbook.local": true}}
	svc := NewService(users, policy, stubJWT{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, mock.Anything).Return(nil, repository.ErrNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	res, err := svc.Register(ctx, RegisterRequest{Email: "Boss@DetailBook.local", Password: "s3cretpass", FullName: "The Boss"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.Equal(t, "boss@detailbook.local", res.User.Email, "email is normalized")
	assert.Equal(t, "token", res.AccessToken)

	res, err = svc.Register(ctx, RegisterRequest{Email: "jane@example.com", Password: "s3cretpass", FullName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, staticRolePolicy{}, stubJWT{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "jane@example.com").Return(&domain.User{ID: 1, Email: "jane@example.com"}, nil)

	_, err := svc.Register(ctx, RegisterRequest{Email: "jane@example.com", Password: "s3cretpass", FullName: "Jane"})

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, staticRolePolicy{}, stubJWT{})
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	users.On("GetByEmail", ctx, "jane@example.com").Return(&domain.User{ID: 1, Email: "jane@example.com", PasswordHash: string(hash), Role: domain.RoleCustomer}, nil)

	res, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "token", res.AccessToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)
	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
