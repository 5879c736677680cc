package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mkuznec/food-order-service/internal/model"
)

// SaveCustomer сохраняет нового клиента
func (r *Repository) SaveCustomer(ctx context.Context, customer model.Customer) error {
	const op = "repository.postgres.customer.SaveCustomer"

	sql, args, err := r.sq.Insert("customers").
		Columns("id", "name", "email", "phone", "active").
		Values(customer.ID, customer.Name, customer.Email, customer.Phone, customer.Active).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to insert customer: %w", op, err)
	}
	return nil
}

// FindCustomer извлекает клиента по его ID
func (r *Repository) FindCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	const op = "repository.postgres.customer.FindCustomer"

	query := `
		SELECT id, name, email, phone, active
		FROM customers
		WHERE id = $1
	`
	var c model.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, fmt.Errorf("%s: %w", op, ErrCustomerNotFound)
		}
		return model.Customer{}, fmt.Errorf("%s: failed to query customer: %w", op, err)
	}
	return c, nil
}

// SetCustomerActive включает или выключает клиента
// клиенты не удаляются физически, пока на них ссылаются исторические заказы
func (r *Repository) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error {
	const op = "repository.postgres.customer.SetCustomerActive"

	sql, args, err := r.sq.Update("customers").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update customer: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrCustomerNotFound)
	}
	return nil
}
