package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// ProductUpdate описывает частичное обновление товара (nil — не трогать поле).
type ProductUpdate struct {
	Name  *string
	Price *float64
}

// ProductList — страница списка товаров.
type ProductList struct {
	Products []*models.Product
	Total    int
	Pages    int
}

// ProductService определяет интерфейс для операций над товарами.
type ProductService interface {
	Create(ctx context.Context, name string, price float64) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, perPage int) (*ProductList, error)
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{log: log, productRepo: productRepo}
}

func (s *productService) Create(ctx context.Context, name string, price float64) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", name))

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{Name: name, Price: price})
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product created", slog.Int64("productID", product.ID))
	return product, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.Get"
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product updated")
	return product, nil
}

// Delete удаляет товар. Если товар входит в существующие заказы,
// репозиторий вернет storage.ErrProductInUse — удаление отклоняется.
func (s *productService) Delete(ctx context.Context, id int64) error {
	const op = "service.ProductService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product deleted")
	return nil
}

func (s *productService) List(ctx context.Context, page, perPage int) (*ProductList, error) {
	const op = "service.ProductService.List"

	total, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count products: %w", op, err)
	}

	products, err := s.productRepo.ListProducts(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	if products == nil {
		products = []*models.Product{}
	}

	return &ProductList{
		Products: products,
		Total:    total,
		Pages:    totalPages(total, perPage),
	}, nil
}
