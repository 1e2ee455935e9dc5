// Package impl contains the concrete implementations of the use case interfaces.
package impl

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userService struct {
	logger   *slog.Logger
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	tokenSvc service.TokenService
}

// NewUserService creates a new user service instance
func NewUserService(
	logger *slog.Logger,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenSvc service.TokenService,
) usecase.UserUsecase {
	return &userService{
		logger:   logger,
		userRepo: userRepo,
		hasher:   hasher,
		tokenSvc: tokenSvc,
	}
}

// Register creates a new user account with a hashed password.
func (s *userService) Register(ctx context.Context, input usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID.String()),
	)

	return &usecase.RegisterOutput{User: user}, nil
}

// Login verifies the credentials and issues an access token.
func (s *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same error as a bad password so login does not leak which
			// emails are registered.
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, err
	}

	if !s.hasher.Check(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := s.tokenSvc.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &usecase.LoginOutput{
		AccessToken: token,
		User:        user,
	}, nil
}

// GetProfile returns the account of the calling user.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}
