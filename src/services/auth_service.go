package services

import (
	"context"
	"errors"
	"fmt"

	"finance/src/config"
	"finance/src/models"
	"finance/src/repositories"
	"finance/src/schemas"
	"finance/src/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceI interface {
	Register(ctx context.Context, form schemas.RegisterForm) (*models.User, error)
	Login(ctx context.Context, form schemas.LoginForm) (*models.User, error)
}

type AuthService struct {
	users        repositories.UserRepository
	cost         int
	startingCash decimal.Decimal
}

func NewAuthService(users repositories.UserRepository, cfg *config.Config) (*AuthService, error) {
	startingCash, err := decimal.NewFromString(cfg.Ledger.StartingCash)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger.startingCash %q: %w", cfg.Ledger.StartingCash, err)
	}
	if startingCash.IsNegative() {
		return nil, fmt.Errorf("ledger.startingCash must not be negative")
	}

	cost := cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, cost: cost, startingCash: startingCash}, nil
}

// Register creates a user with the configured starting cash.
func (s *AuthService) Register(ctx context.Context, form schemas.RegisterForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, NewError(ErrInvalidInput, "password must be at most 72 bytes")
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: form.Username, Hash: string(hash), Cash: s.startingCash}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrUsernameTaken) {
		return nil, NewError(ErrDuplicateUsername, "username %s already exists", form.Username)
	}
	if err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login checks the credentials. Unknown users and wrong passwords are not
// told apart.
func (s *AuthService) Login(ctx context.Context, form schemas.LoginForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.users.GetByUsername(ctx, form.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NewError(ErrInvalidCredentials, "invalid username and/or password")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(form.Password)); err != nil {
		return nil, NewError(ErrInvalidCredentials, "invalid username and/or password")
	}
	return user, nil
}
