package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/admin-panel/internal/models"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "unique violation", in: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: ErrEmailTaken},
		{name: "wrapped unique violation", in: fmt.Errorf("x: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), want: ErrEmailTaken},
		{name: "other pg error", in: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.want == nil {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestValidIDs(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, []string{id}, validIDs([]string{"1", id, "", "not-a-uuid"}))
	assert.Empty(t, validIDs(nil))
}

func TestStorage_Users(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "a@x.com", "hash-1")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, "a@x.com", "hash-2")
	require.ErrorIs(t, err, ErrEmailTaken)

	// Уникальность учитывает регистр
	_, err = s.CreateUser(ctx, "A@x.com", "hash-3")
	require.NoError(t, err)

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	_, err = s.GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUser(ctx, "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUser(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpdateUser(ctx, u.ID, "b@x.com", ""))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", got.Email)
	assert.Equal(t, "hash-1", got.PasswordHash, "empty hash keeps password")

	require.NoError(t, s.UpdateUser(ctx, u.ID, "b@x.com", "hash-new"))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-new", got.PasswordHash)

	require.ErrorIs(t, s.UpdateUser(ctx, u.ID, "A@x.com", ""), ErrEmailTaken)
	require.ErrorIs(t, s.UpdateUser(ctx, uuid.NewString(), "z@x.com", ""), ErrNotFound)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt), "newest first")

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	require.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestStorage_DeleteUsers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	var ids []string
	for i := range 3 {
		u, err := s.CreateUser(ctx, fmt.Sprintf("u%d@x.com", i), "h")
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	n, err := s.DeleteUsers(ctx, []string{ids[0], ids[1], "garbage", uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteUsers(ctx, []string{"garbage"})
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[2], list[0].ID)
}

func TestStorage_Customers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	c, err := s.CreateCustomer(ctx, models.Customer{Name: "Ann", Email: "ann@x.com", Phone: "123", Address: "Main st"})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	_, err = s.CreateCustomer(ctx, models.Customer{Name: "Other", Email: "ann@x.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	other, err := s.CreateCustomer(ctx, models.Customer{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Empty(t, other.Phone)

	got, err := s.GetCustomerByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	c.Name = "Anna"
	c.Phone = "456"
	require.NoError(t, s.UpdateCustomer(ctx, *c))
	got, err = s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "456", got.Phone)

	c.Email = "bob@x.com"
	require.ErrorIs(t, s.UpdateCustomer(ctx, *c), ErrEmailTaken)
	require.ErrorIs(t, s.UpdateCustomer(ctx, models.Customer{ID: "nope", Name: "x", Email: "y"}), ErrNotFound)

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	n, err := s.DeleteCustomers(ctx, []string{c.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = s.DeleteCustomer(ctx, c.ID)
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = s.GetCustomer(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
