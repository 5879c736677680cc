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

// SaveOrder сохраняет заказ вместе с позициями в рамках одной транзакции
// частичная запись (заказ без позиций) снаружи не наблюдаема никогда
func (r *Repository) SaveOrder(ctx context.Context, order model.Order) error {
	const op = "repository.postgres.order.SaveOrder"

	// начинаем транзакцию
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	// гарантируем откат транзакции в случае любой ошибки
	defer tx.Rollback(ctx)

	// 1. Вставка в таблицу orders
	sql, args, err := r.sq.Insert("orders").
		Columns(
			"id", "customer_id", "restaurant_id", "status",
			"subtotal", "delivery_fee", "total",
			"delivery_address", "notes", "created_at",
		).
		Values(
			order.ID, order.CustomerID, order.RestaurantID, string(order.Status),
			order.Subtotal, order.DeliveryFee, order.Total,
			order.DeliveryAddress, order.Notes, order.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build orders insert query: %w", op, err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		// повтор с тем же UID заказа — не ошибка хранилища, а сигнал идемпотентности
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrOrderExists)
		}
		return fmt.Errorf("%s: failed to insert into orders: %w", op, err)
	}

	// 2. Вставка в таблицу order_items (в цикле)
	for i, item := range order.Items {
		sql, args, err = r.sq.Insert("order_items").
			Columns("order_id", "position", "product_id", "name", "quantity", "unit_price", "subtotal").
			Values(order.ID, i+1, item.ProductID, item.Name, item.Quantity, item.UnitPrice, item.Subtotal).
			ToSql()
		if err != nil {
			return fmt.Errorf("%s: failed to build items insert query for product %s: %w", op, item.ProductID, err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("%s: failed to insert item with product %s: %w", op, item.ProductID, err)
		}
	}

	// если все прошло успешно, подтверждаем транзакцию
	return tx.Commit(ctx)
}

// FindOrder извлекает один заказ из базы данных по его ID
func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	const op = "repository.postgres.order.FindOrder"

	// 1. Получаем основные данные заказа одним запросом
	query := `
		SELECT id, customer_id, restaurant_id, status,
		       subtotal, delivery_fee, total,
		       delivery_address, notes, created_at
		FROM orders
		WHERE id = $1
	`
	var order model.Order
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.CustomerID, &order.RestaurantID, &status,
		&order.Subtotal, &order.DeliveryFee, &order.Total,
		&order.DeliveryAddress, &order.Notes, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to query order: %w", op, err)
	}
	order.Status = model.Status(status)

	// 2. Получаем все позиции этого заказа, сохраняя порядок вставки
	itemsQuery := `
		SELECT product_id, name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, itemsQuery, id)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to query items: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Subtotal)
		if err != nil {
			return model.Order{}, fmt.Errorf("%s: failed to scan item row: %w", op, err)
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

// UpdateOrderStatus переводит заказ в новый статус по принципу compare-and-set:
// запись обновляется только если текущий статус совпадает с ожидаемым
// возвращает false, если условие не сошлось — проигравший гонку получает
// конфликт и не перетирает результат победителя
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, expected, next model.Status) (bool, error) {
	const op = "repository.postgres.order.UpdateOrderStatus"

	sql, args, err := r.sq.Update("orders").
		Set("status", string(next)).
		Where(squirrel.Eq{"id": id, "status": string(expected)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("%s: failed to update order status: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}
