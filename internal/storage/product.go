package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInUse — товар упоминается в существующих заказах, удаление отклонено.
	ErrProductInUse = errors.New("product is referenced by orders")
)

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// GetProductByIDTx получает товар в рамках открытой транзакции.
	GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO products (product_name, price) VALUES ($1, $2) RETURNING id",
		product.Name, product.Price,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = id
	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := r.db.QueryRowContext(ctx, "SELECT id, product_name, price FROM products WHERE id = $1", id)
	if err := row.Scan(&product.ID, &product.Name, &product.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := tx.QueryRowContext(ctx, "SELECT id, product_name, price FROM products WHERE id = $1", id)
	if err := row.Scan(&product.ID, &product.Name, &product.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET product_name = $1, price = $2 WHERE id = $3",
		product.Name, product.Price, product.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет товар. Внешний ключ order_product.product_id задан без
// каскада, поэтому удаление товара, входящего в заказы, отклоняется (23503).
func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return ErrProductInUse
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_name, price FROM products ORDER BY id LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
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

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
