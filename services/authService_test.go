package services

import (
	"context"
	"testing"

	"OPDQueue/models"
	"OPDQueue/repositories"
	"OPDQueue/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	emailExistsFn     func(ctx context.Context, email string) (bool, error)
	createUserFn      func(ctx context.Context, user *models.User) error
	getWithPasswordFn func(ctx context.Context, email string) (*models.User, error)
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emailExistsFn(ctx, email)
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	return f.createUserFn(ctx, user)
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetUsers(ctx context.Context, role, email string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetUserWithPassword(ctx context.Context, email string) (*models.User, error) {
	return f.getWithPasswordFn(ctx, email)
}

func TestValidateAndCreateUserRejectsBadPayload(t *testing.T) {
	repo := &fakeUserRepo{
		emailExistsFn: func(context.Context, string) (bool, error) {
			t.Fatal("repository must not be reached for an invalid payload")
			return false, nil
		},
	}
	service := NewUserService(repo)

	cases := []struct {
		name string
		user models.User
	}{
		{"bad email", models.User{Name: "Jane Mwangi", Email: "not-an-email", Password: "longenough"}},
		{"short password", models.User{Name: "Jane Mwangi", Email: "jane@example.com", Password: "short"}},
		{"no name", models.User{Email: "jane@example.com", Password: "longenough"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateAndCreateUser(context.Background(), &tt.user)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid account data")
		})
	}
}

func TestValidateAndCreateUserDefaultsToPatient(t *testing.T) {
	service := NewUserService(&fakeUserRepo{})

	user := models.User{Name: "Jane Mwangi", Email: "not-an-email", Password: "longenough"}
	_ = service.ValidateAndCreateUser(context.Background(), &user)

	// The role default is applied before anything else.
	assert.Equal(t, models.RolePatient, user.Role)
}

func TestAuthenticateUserUnknownEmail(t *testing.T) {
	repo := &fakeUserRepo{
		getWithPasswordFn: func(context.Context, string) (*models.User, error) {
			return nil, repositories.ErrUserNotFound
		},
	}
	service := NewUserService(repo)

	_, err := service.AuthenticateUser(context.Background(), "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUserWrongPassword(t *testing.T) {
	hashed, err := utils.HashPassword("rightpassword")
	require.NoError(t, err)

	repo := &fakeUserRepo{
		getWithPasswordFn: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 1, Email: "jane@example.com", Password: hashed}, nil
		},
	}
	service := NewUserService(repo)

	_, err = service.AuthenticateUser(context.Background(), "jane@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUserClearsPassword(t *testing.T) {
	hashed, err := utils.HashPassword("rightpassword")
	require.NoError(t, err)

	repo := &fakeUserRepo{
		getWithPasswordFn: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 1, Email: "jane@example.com", Password: hashed, Role: models.RolePatient}, nil
		},
	}
	service := NewUserService(repo)

	user, err := service.AuthenticateUser(context.Background(), "jane@example.com", "rightpassword")
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Equal(t, int64(1), user.ID)
}
