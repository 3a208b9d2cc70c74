package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

// OrderProductStorage описывает методы для работы со связкой заказ–товар
// (таблица order_product, составной первичный ключ order_id+product_id).
// Мутирующие методы принимают транзакцию: проверка членства и вставка/удаление
// должны выполняться в одном атомарном блоке.
type OrderProductStorage interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (bool, error)
	AddTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) error
	// RemoveTx возвращает false, если связи не существовало.
	RemoveTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (bool, error)
	GetProductsByOrderID(ctx context.Context, orderID int64) ([]*models.Product, error)
}

type orderProductRepository struct {
	db *sql.DB
}

func NewOrderProductRepository(db *sql.DB) *orderProductRepository {
	return &orderProductRepository{db: db}
}

func (r *orderProductRepository) ExistsTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM order_product WHERE order_id = $1 AND product_id = $2)",
		orderID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check association: %w", err)
	}
	return exists, nil
}

func (r *orderProductRepository) AddTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO order_product (order_id, product_id) VALUES ($1, $2)",
		orderID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to add product to order: %w", err)
	}
	return nil
}

func (r *orderProductRepository) RemoveTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM order_product WHERE order_id = $1 AND product_id = $2",
		orderID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove product from order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetProductsByOrderID возвращает товары заказа через JOIN с таблицей связей.
func (r *orderProductRepository) GetProductsByOrderID(ctx context.Context, orderID int64) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.product_name, p.price
		 FROM products p
		 JOIN order_product op ON op.product_id = p.id
		 WHERE op.order_id = $1
		 ORDER BY p.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
