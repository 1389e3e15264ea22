// Package services содержит управление карточками клиентов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/storage"
)

var (
	// ErrEmailTaken email принадлежит другому клиенту.
	ErrEmailTaken = errors.New("email already exists")
	// ErrNotFound клиент не найден.
	ErrNotFound = errors.New("customer not found")
)

// ClonePrefix добавляется ко всем полям черновика копии клиента.
const ClonePrefix = "CLONE - "

// CustomerRepository определяет методы для работы с клиентами в хранилище.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	DeleteCustomers(ctx context.Context, ids []string) (int, error)
}

// CustomerService реализует операции над клиентами.
type CustomerService struct {
	repo CustomerRepository
	log  *slog.Logger
}

// NewCustomerService создаёт сервис клиентов.
func NewCustomerService(repo CustomerRepository, log *slog.Logger) *CustomerService {
	return &CustomerService{repo: repo, log: log}
}

// List возвращает клиентов, новые первыми.
func (s *CustomerService) List(ctx context.Context) ([]*models.Customer, error) {
	const op = "services.customers.List"
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}

// Get возвращает клиента по ID.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	const op = "services.customers.Get"
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}

// Create сохраняет нового клиента.
func (s *CustomerService) Create(ctx context.Context, c models.Customer) (*models.Customer, error) {
	const op = "services.customers.Create"

	if err := s.ensureEmailFree(ctx, c.Email, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateCustomer(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("customer created", slog.String("customer_id", created.ID))
	return created, nil
}

// Update перезаписывает поля клиента c.ID.
func (s *CustomerService) Update(ctx context.Context, c models.Customer) error {
	const op = "services.customers.Update"

	if err := s.ensureEmailFree(ctx, c.Email, c.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("customer updated", slog.String("customer_id", c.ID))
	return nil
}

// Delete удаляет клиента.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	const op = "services.customers.Delete"
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	s.log.Info("customer deleted", slog.String("customer_id", id))
	return nil
}

// BulkDelete удаляет набор клиентов и возвращает число удалённых строк.
func (s *CustomerService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	const op = "services.customers.BulkDelete"
	n, err := s.repo.DeleteCustomers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("customers deleted", slog.Int("requested", len(ids)), slog.Int("deleted", n))
	return n, nil
}

// Duplicate возвращает несохранённый черновик, где каждое поле начинается с ClonePrefix.
func (s *CustomerService) Duplicate(ctx context.Context, id string) (*models.Customer, error) {
	const op = "services.customers.Duplicate"
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &models.Customer{
		Name:    ClonePrefix + c.Name,
		Email:   ClonePrefix + c.Email,
		Phone:   ClonePrefix + c.Phone,
		Address: ClonePrefix + c.Address,
	}, nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetCustomerByEmail(ctx, email)
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
