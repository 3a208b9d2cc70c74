package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// CreateProductRequest — тело POST /products.
type CreateProductRequest struct {
	Name  string   `json:"product_name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// UpdateProductRequest — тело PUT /products/{id}, частичное обновление.
type UpdateProductRequest struct {
	Name  *string  `json:"product_name" validate:"omitempty,min=1"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

// ProductListResponse — страница списка товаров, формат исходного API.
type ProductListResponse struct {
	Products    []*models.Product `json:"products"`
	Total       int               `json:"total"`
	Pages       int               `json:"pages"`
	CurrentPage int               `json:"current_page"`
}

// CreateProductHandler обрабатывает POST /products.
func CreateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req CreateProductRequest
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

		product, err := productService.Create(r.Context(), req.Name, *req.Price)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusCreated, product)
	}
}

// GetProductHandler обрабатывает GET /products/{id}.
func GetProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		product, err := productService.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Product not found"})
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, product)
	}
}

// UpdateProductHandler обрабатывает PUT /products/{id}.
func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		var req UpdateProductRequest
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

		product, err := productService.Update(r.Context(), id, service.ProductUpdate{
			Name:  req.Name,
			Price: req.Price,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Product not found"})
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает DELETE /products/{id}.
// Товар, входящий в существующие заказы, не удаляется — 409.
func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		if err := productService.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, storage.ErrProductNotFound):
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "Product not found"})
			case errors.Is(err, storage.ErrProductInUse):
				logger.Warn("product referenced by orders")
				writeJSON(logger, w, http.StatusConflict, messageResponse{Message: "Product is referenced by existing orders"})
			default:
				logger.Error("failed to delete product", slog.Any("error", err))
				writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListProductsHandler обрабатывает GET /products?page&per_page.
func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		page, perPage := pageParams(r)
		list, err := productService.List(r.Context(), page, perPage)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, ProductListResponse{
			Products:    list.Products,
			Total:       list.Total,
			Pages:       list.Pages,
			CurrentPage: page,
		})
	}
}
