package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// RemoveProductRequest — тело DELETE /orders/{order_id}/remove_product.
type RemoveProductRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// CreateOrderHandler обрабатывает POST /orders.
// Владелец заказа — пользователь из токена, из тела запроса он не берется.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(logger, w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		order, err := orderService.Create(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "User not found"})
				return
			}
			logger.Error("failed to create order", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusCreated, order)
	}
}

// AddProductToOrderHandler обрабатывает POST /orders/{order_id}/add_product/{product_id}.
// Повторное добавление того же товара — отдельный исход (400), не дубликат и не 500.
func AddProductToOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddProductToOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, ok := idParam(chi.URLParam(r, "order_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}
		productID, ok := idParam(chi.URLParam(r, "product_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		if err := orderService.AddProduct(r.Context(), orderID, productID); err != nil {
			switch {
			case errors.Is(err, service.ErrProductAlreadyInOrder):
				writeJSON(logger, w, http.StatusBadRequest, messageResponse{Message: "Product already in order"})
			case errors.Is(err, storage.ErrOrderNotFound):
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Order not found"})
			case errors.Is(err, storage.ErrProductNotFound):
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Product not found"})
			default:
				logger.Error("failed to add product to order", slog.Any("error", err))
				writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
			return
		}

		writeJSON(logger, w, http.StatusOK, messageResponse{Message: "Product added to order"})
	}
}

// RemoveProductFromOrderHandler обрабатывает DELETE /orders/{order_id}/remove_product.
// Отсутствие заказа и отсутствие связи дают одинаковый 404 (поведение исходного API).
func RemoveProductFromOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveProductFromOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, ok := idParam(chi.URLParam(r, "order_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}

		var req RemoveProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeValidationErrors(logger, w, err)
			return
		}

		if err := orderService.RemoveProduct(r.Context(), orderID, req.ProductID); err != nil {
			if errors.Is(err, service.ErrProductNotInOrder) {
				writeJSON(logger, w, http.StatusNotFound, messageResponse{Message: "Product not found in this order"})
				return
			}
			logger.Error("failed to remove product from order", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, messageResponse{Message: "Product removed from order"})
	}
}

// ListUserOrdersHandler обрабатывает GET /orders/user/{user_id}.
func ListUserOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUserOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := idParam(chi.URLParam(r, "user_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
			return
		}

		orders, err := orderService.ListByUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "User not found"})
				return
			}
			logger.Error("failed to list orders", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, orders)
	}
}

// ListOrderProductsHandler обрабатывает GET /orders/{order_id}/products.
func ListOrderProductsHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrderProductsHandler"
		logger := log.With(slog.String("op", op))

		orderID, ok := idParam(chi.URLParam(r, "order_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}

		products, err := orderService.ListProducts(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Order not found"})
				return
			}
			logger.Error("failed to list order products", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, products)
	}
}

// ShipOrderHandler обрабатывает POST /orders/{order_id}/ship.
// Повторный перевод из терминального статуса запрещен — 409.
func ShipOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return transitionHandler(log, "handlers.ShipOrderHandler", orderService.Ship, "Order shipped")
}

// CancelOrderHandler обрабатывает POST /orders/{order_id}/cancel.
func CancelOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return transitionHandler(log, "handlers.CancelOrderHandler", orderService.Cancel, "Order cancelled")
}

func transitionHandler(log *slog.Logger, op string, transition func(ctx context.Context, orderID int64) error, okMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", op))

		orderID, ok := idParam(chi.URLParam(r, "order_id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}

		if err := transition(r.Context(), orderID); err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Order not found"})
			case errors.Is(err, service.ErrOrderFinalized):
				writeJSON(logger, w, http.StatusConflict, messageResponse{Message: "Order already finalized"})
			default:
				logger.Error("failed to change order status", slog.Any("error", err))
				writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
			return
		}

		writeJSON(logger, w, http.StatusOK, messageResponse{Message: okMessage})
	}
}
