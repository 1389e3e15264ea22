// Package services содержит управление учётными записями пользователей панели.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/admin-panel/internal/lib/password"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/storage"
)

var (
	// ErrEmailTaken email принадлежит другому пользователю.
	ErrEmailTaken = errors.New("email already exists")
	// ErrNotFound пользователь не найден.
	ErrNotFound = errors.New("user not found")
)

// ClonePrefix добавляется к email в черновике копии пользователя.
const ClonePrefix = "clone-"

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateUser при пустом passwordHash оставляет пароль прежним.
	UpdateUser(ctx context.Context, id, email, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
	DeleteUsers(ctx context.Context, ids []string) (int, error)
}

// UserService реализует операции над пользователями.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// List возвращает пользователей, новые первыми.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	const op = "services.users.List"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Get возвращает пользователя по ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.users.Get"
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return user, nil
}

// Create создаёт пользователя. Email должен быть свободен.
func (s *UserService) Create(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.users.Create"

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.CreateUser(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("user created", slog.String("user_id", user.ID))
	return user, nil
}

// Update меняет email пользователя и, если rawPassword не пуст, его пароль.
// Email может остаться прежним, но не может совпасть с чужим.
func (s *UserService) Update(ctx context.Context, id, email, rawPassword string) error {
	const op = "services.users.Update"

	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var hash string
	if rawPassword != "" {
		var err error
		if hash, err = password.Hash(rawPassword); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := s.repo.UpdateUser(ctx, id, email, hash); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("user updated", slog.String("user_id", id), slog.Bool("password_changed", hash != ""))
	return nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, id string) error {
	const op = "services.users.Delete"
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("user deleted", slog.String("user_id", id))
	return nil
}

// BulkDelete удаляет набор пользователей и возвращает число удалённых строк.
func (s *UserService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	const op = "services.users.BulkDelete"
	n, err := s.repo.DeleteUsers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("users deleted", slog.Int("requested", len(ids)), slog.Int("deleted", n))
	return n, nil
}

// Duplicate возвращает несохранённый черновик копии пользователя.
// Пароль не копируется.
func (s *UserService) Duplicate(ctx context.Context, id string) (*models.User, error) {
	const op = "services.users.Duplicate"
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &models.User{Email: ClonePrefix + user.Email}, nil
}

// ensureEmailFree проверяет, что email не занят никем, кроме selfID.
func (s *UserService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		s.log.Error("email lookup failed", sl.Err(err))
		return err
	}
	if selfID != "" && existing.ID == selfID {
		return nil
	}
	return ErrEmailTaken
}

func mapError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrEmailTaken):
		return ErrEmailTaken
	default:
		return err
	}
}
