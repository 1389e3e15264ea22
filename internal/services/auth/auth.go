// Package services содержит логику регистрации и проверки учётных данных.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/admin-panel/internal/lib/password"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/storage"
)

// ErrDuplicateEmail пользователь с таким email уже зарегистрирован.
var ErrDuplicateEmail = errors.New("user already exists with that email")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	// GetUserByEmail возвращает пользователя или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по ID или storage.ErrNotFound.
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// AuthService отвечает за регистрацию и аутентификацию.
type AuthService struct {
	users UserRepository
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register создаёт пользователя с хэшированным паролем.
// Занятый email даёт ErrDuplicateEmail, существующая запись не меняется.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, email, hashed)
	if err != nil {
		// параллельная регистрация того же email
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Authenticate возвращает пользователя при верных учётных данных.
// Неизвестный email и неверный пароль одинаково дают (nil, nil).
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(rawPassword, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

// CurrentUser возвращает пользователя сессии или nil, если он был удалён.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	const op = "services.auth.CurrentUser"

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
