package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/admin-panel/internal/models"
)

const customerColumns = `id, name, email, phone, address, created_at`

func scanCustomer(row scanner) (*models.Customer, error) {
	c := &models.Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCustomer сохраняет клиента и возвращает его с присвоенным ID.
func (s *Storage) CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	const op = "storage.CreateCustomer"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO customers (name, email, phone, address)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + customerColumns
	created, err := scanCustomer(s.DB.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone, c.Address))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetCustomer возвращает клиента по ID.
func (s *Storage) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	const op = "storage.GetCustomer"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	c, err := scanCustomer(s.DB.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}

// GetCustomerByEmail возвращает клиента по email.
func (s *Storage) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	const op = "storage.GetCustomerByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.DB.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}

// ListCustomers возвращает всех клиентов, новые первыми.
func (s *Storage) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	const op = "storage.ListCustomers"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}

// UpdateCustomer перезаписывает все поля клиента.
func (s *Storage) UpdateCustomer(ctx context.Context, c models.Customer) error {
	const op = "storage.UpdateCustomer"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}
	if !validID(c.ID) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	query := `UPDATE customers
			  SET name = $2, email = $3, phone = $4, address = $5
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Address)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return affected(res, op)
}

// DeleteCustomer удаляет клиента по ID.
func (s *Storage) DeleteCustomer(ctx context.Context, id string) error {
	const op = "storage.DeleteCustomer"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}
	if !validID(id) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// DeleteCustomers удаляет клиентов из набора ID и возвращает число удалённых строк.
func (s *Storage) DeleteCustomers(ctx context.Context, ids []string) (int, error) {
	const op = "storage.DeleteCustomers"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
