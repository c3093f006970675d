package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/store"
	"github.com/MKhiriev/go-trace-keeper/models"
)

// userService is the concrete implementation of UserService.
// Passwords are stored as bcrypt hashes.
type userService struct {
	userRepository store.UserRepository
	cost           int
	logger         *logger.Logger
}

// NewUserService constructs a UserService on top of userRepository.
func NewUserService(userRepository store.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		cost:           bcrypt.DefaultCost,
		logger:         logger,
	}
}

// Register creates a new user account.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - ErrLoginTaken if the login already exists.
//   - A wrapped storage error otherwise.
func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	log := logger.FromContextOr(ctx, s.logger)

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		log.Error().Str("login", req.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	user, err := s.userRepository.CreateUser(ctx, models.User{
		Login:        req.Login,
		Name:         req.Name,
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrLoginAlreadyExists) {
		return models.User{}, ErrLoginTaken
	}
	if err != nil {
		log.Err(err).Str("login", req.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return user, nil
}

// Find returns the user with the given login or ErrUserNotFound.
func (s *userService) Find(ctx context.Context, login string) (models.User, error) {
	if login == "" {
		return models.User{}, ErrInvalidDataProvided
	}

	user, err := s.userRepository.FindUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Err(err).Str("login", login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	return user, nil
}
