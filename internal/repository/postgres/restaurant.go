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

// SaveRestaurant сохраняет новый ресторан
func (r *Repository) SaveRestaurant(ctx context.Context, restaurant model.Restaurant) error {
	const op = "repository.postgres.restaurant.SaveRestaurant"

	sql, args, err := r.sq.Insert("restaurants").
		Columns("id", "name", "category", "delivery_fee", "active").
		Values(restaurant.ID, restaurant.Name, restaurant.Category, restaurant.DeliveryFee, restaurant.Active).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to insert restaurant: %w", op, err)
	}
	return nil
}

// FindRestaurant извлекает ресторан по его ID
func (r *Repository) FindRestaurant(ctx context.Context, id uuid.UUID) (model.Restaurant, error) {
	const op = "repository.postgres.restaurant.FindRestaurant"

	query := `
		SELECT id, name, category, delivery_fee, active
		FROM restaurants
		WHERE id = $1
	`
	var rest model.Restaurant
	err := r.db.QueryRow(ctx, query, id).Scan(&rest.ID, &rest.Name, &rest.Category, &rest.DeliveryFee, &rest.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Restaurant{}, fmt.Errorf("%s: %w", op, ErrRestaurantNotFound)
		}
		return model.Restaurant{}, fmt.Errorf("%s: failed to query restaurant: %w", op, err)
	}
	return rest, nil
}

// SetRestaurantActive включает или выключает ресторан
func (r *Repository) SetRestaurantActive(ctx context.Context, id uuid.UUID, active bool) error {
	const op = "repository.postgres.restaurant.SetRestaurantActive"

	sql, args, err := r.sq.Update("restaurants").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update restaurant: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrRestaurantNotFound)
	}
	return nil
}
