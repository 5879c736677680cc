package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/food-order-service/internal/model"
)

// SaveProduct сохраняет новый товар каталога
// принадлежность ресторану — внешний ключ restaurant_id, без каскадов
func (r *Repository) SaveProduct(ctx context.Context, product model.Product) error {
	const op = "repository.postgres.product.SaveProduct"

	sql, args, err := r.sq.Insert("products").
		Columns("id", "restaurant_id", "name", "price", "available").
		Values(product.ID, product.RestaurantID, product.Name, product.Price, product.Available).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to insert product: %w", op, err)
	}
	return nil
}

// FindProduct извлекает товар по его ID
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	const op = "repository.postgres.product.FindProduct"

	query := `
		SELECT id, restaurant_id, name, price, available
		FROM products
		WHERE id = $1
	`
	var p model.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Price, &p.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("%s: %w", op, ErrProductNotFound)
		}
		return model.Product{}, fmt.Errorf("%s: failed to query product: %w", op, err)
	}
	return p, nil
}

// SetProductAvailable меняет доступность товара для заказа
func (r *Repository) SetProductAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	const op = "repository.postgres.product.SetProductAvailable"

	sql, args, err := r.sq.Update("products").
		Set("available", available).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update product: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrProductNotFound)
	}
	return nil
}

// SetProductPrice меняет цену товара в каталоге
// на уже созданные заказы это не влияет: цена в позициях зафиксирована
func (r *Repository) SetProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	const op = "repository.postgres.product.SetProductPrice"

	sql, args, err := r.sq.Update("products").
		Set("price", price).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update product price: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrProductNotFound)
	}
	return nil
}
