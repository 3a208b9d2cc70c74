package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

var (
	// ErrProductAlreadyInOrder — повторное добавление той же пары заказ–товар.
	ErrProductAlreadyInOrder = errors.New("product already in order")
	// ErrProductNotInOrder — связи нет; сюда же схлопывается отсутствие самого заказа
	// или товара при удалении (поведение исходного API).
	ErrProductNotInOrder = errors.New("product not found in this order")
	// ErrOrderFinalized — заказ уже в терминальном статусе, переход запрещён.
	ErrOrderFinalized = errors.New("order already in terminal status")
)

// OrderService определяет интерфейс для работы с заказами и их составом.
type OrderService interface {
	Create(ctx context.Context, userID int64) (*models.Order, error)
	AddProduct(ctx context.Context, orderID, productID int64) error
	RemoveProduct(ctx context.Context, orderID, productID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	ListProducts(ctx context.Context, orderID int64) ([]*models.Product, error)
	Ship(ctx context.Context, orderID int64) error
	Cancel(ctx context.Context, orderID int64) error
}

type orderService struct {
	log           *slog.Logger
	db            *sql.DB
	userRepo      storage.UserStorage
	productRepo   storage.ProductStorage
	orderRepo     storage.OrderStorage
	orderProdRepo storage.OrderProductStorage
}

func NewOrderService(
	log *slog.Logger,
	db *sql.DB,
	userRepo storage.UserStorage,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	orderProdRepo storage.OrderProductStorage,
) OrderService {
	return &orderService{
		log:           log,
		db:            db,
		userRepo:      userRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		orderProdRepo: orderProdRepo,
	}
}

// Create создает пустой заказ для аутентифицированного пользователя.
// Статус pending и дата создания выставляются одним INSERT.
func (s *orderService) Create(ctx context.Context, userID int64) (*models.Order, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("creating order")

	// Владелец должен существовать: токен мог пережить удаление пользователя
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.CreateOrder(ctx, userID)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", order.ID))
	return order, nil
}

// AddProduct добавляет товар в заказ. Блокировка строки заказа, проверка членства
// и вставка выполняются в одной транзакции, поэтому два конкурентных запроса
// не создадут дубликат связи.
func (s *orderService) AddProduct(ctx context.Context, orderID, productID int64) error {
	const op = "service.OrderService.AddProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("productID", productID))
	logger.Info("adding product to order")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if _, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.productRepo.GetProductByIDTx(ctx, tx, productID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.orderProdRepo.ExistsTx(ctx, tx, orderID, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to check association", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("product already in order")
		return fmt.Errorf("%s: %w", op, ErrProductAlreadyInOrder)
	}

	if err := s.orderProdRepo.AddTx(ctx, tx, orderID, productID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("product added to order")
	return nil
}

// RemoveProduct удаляет товар из заказа. Отсутствие заказа и отсутствие связи
// дают один и тот же результат ErrProductNotInOrder.
func (s *orderService) RemoveProduct(ctx context.Context, orderID, productID int64) error {
	const op = "service.OrderService.RemoveProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("productID", productID))
	logger.Info("removing product from order")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if _, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return fmt.Errorf("%s: %w", op, ErrProductNotInOrder)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.orderProdRepo.RemoveTx(ctx, tx, orderID, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to remove product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("product not in order")
		return fmt.Errorf("%s: %w", op, ErrProductNotInOrder)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("product removed from order")
	return nil
}

func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListByUser"

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *orderService) ListProducts(ctx context.Context, orderID int64) ([]*models.Product, error) {
	const op = "service.OrderService.ListProducts"

	if _, err := s.orderRepo.GetOrderByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.orderProdRepo.GetProductsByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// Ship переводит заказ в shipped.
func (s *orderService) Ship(ctx context.Context, orderID int64) error {
	return s.transition(ctx, orderID, models.OrderStatusShipped)
}

// Cancel переводит заказ в cancelled.
func (s *orderService) Cancel(ctx context.Context, orderID int64) error {
	return s.transition(ctx, orderID, models.OrderStatusCancelled)
}

// transition меняет статус заказа с проверкой, что текущий статус не терминальный.
// Проверка и UPDATE идут под блокировкой строки в одной транзакции, иначе два
// конкурентных запроса могли бы оба увидеть pending и оба выполнить переход.
func (s *orderService) transition(ctx context.Context, orderID int64, status string) error {
	const op = "service.OrderService.transition"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("status", status))
	logger.Info("starting status transition")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if order.IsFinal() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("order already finalized", slog.String("current", order.Status))
		return fmt.Errorf("%s: %w", op, ErrOrderFinalized)
	}

	if err := s.orderRepo.UpdateOrderStatusTx(ctx, tx, orderID, status); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("status transition completed")
	return nil
}
