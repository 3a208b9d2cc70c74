package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет новый заказ со статусом pending, дата выставляется базой
	// в том же INSERT.
	CreateOrder(ctx context.Context, userID int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// LockOrderByIDTx блокирует строку заказа на время транзакции (FOR UPDATE NOWAIT).
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	// UpdateOrderStatusTx меняет статус заказа в рамках транзакции.
	UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *orderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, userID int64) (*models.Order, error) {
	order := &models.Order{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, status, order_date) VALUES ($1, $2, NOW())
		 RETURNING id, status, order_date`,
		userID, models.OrderStatusPending,
	).Scan(&order.ID, &order.Status, &order.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, status, order_date FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.OrderDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, status, order_date FROM orders
		 WHERE user_id = $1 ORDER BY order_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.OrderDate); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, user_id, status, order_date FROM orders WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.OrderDate); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "55P03" { // lock_not_available
			return nil, fmt.Errorf("order is locked, please try again: %w", err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
