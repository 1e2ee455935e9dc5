package impl

import (
	"context"
	"testing"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	hasher := new(mockPasswordHasher)
	tokenSvc := new(mockTokenService)

	hasher.On("Hash", "s3cret").Return("hashed", nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "ana@example.com" && u.PasswordHash == "hashed"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(nil)

	svc := NewUserService(testLogger(), userRepo, hasher, tokenSvc)

	out, err := svc.Register(context.Background(), usecase.RegisterUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, out.User.ID)
	assert.Equal(t, "hashed", out.User.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	hasher := new(mockPasswordHasher)

	hasher.On("Hash", mock.Anything).Return("hashed", nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateUser)

	svc := NewUserService(testLogger(), userRepo, hasher, new(mockTokenService))

	_, err := svc.Register(context.Background(), usecase.RegisterUserInput{
		Name:     "Ana",
		Email:    "taken@example.com",
		Password: "s3cret",
	})

	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	hasher := new(mockPasswordHasher)
	tokenSvc := new(mockTokenService)

	user := &entity.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "hashed"}
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	hasher.On("Check", "s3cret", "hashed").Return(true)
	tokenSvc.On("GenerateToken", user.ID).Return("jwt-token", nil)

	svc := NewUserService(testLogger(), userRepo, hasher, tokenSvc)

	out, err := svc.Login(context.Background(), usecase.LoginInput{
		Email:    "ana@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", out.AccessToken)
	assert.Equal(t, user, out.User)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	hasher := new(mockPasswordHasher)

	user := &entity.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "hashed"}
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	hasher.On("Check", "wrong", "hashed").Return(false)

	svc := NewUserService(testLogger(), userRepo, hasher, new(mockTokenService))

	_, err := svc.Login(context.Background(), usecase.LoginInput{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	userRepo := new(mockUserRepository)
	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.ErrUserNotFound)

	svc := NewUserService(testLogger(), userRepo, new(mockPasswordHasher), new(mockTokenService))

	_, err := svc.Login(context.Background(), usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	// Indistinguishable from a wrong password; no email enumeration.
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	userRepo := new(mockUserRepository)
	user := &entity.User{ID: uuid.New(), Name: "Ana"}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	svc := NewUserService(testLogger(), userRepo, new(mockPasswordHasher), new(mockTokenService))

	got, err := svc.GetProfile(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user, got)
}
