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

// CreateUserRequest — тело POST /users (регистрация, открытый эндпоинт).
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest — тело PUT /users/{id}. Указатели отличают "поле не передано"
// от явного пустого значения, непереданные поля сохраняются.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Address  *string `json:"address"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=1"`
}

// UserListResponse — страница списка пользователей, формат исходного API.
type UserListResponse struct {
	Users       []*models.User `json:"users"`
	Total       int            `json:"total"`
	Pages       int            `json:"pages"`
	CurrentPage int            `json:"current_page"`
}

// CreateUserHandler обрабатывает POST /users.
func CreateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
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

		user, err := userService.Create(r.Context(), req.Name, req.Address, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				logger.Warn("email already taken")
				writeJSON(logger, w, http.StatusBadRequest, map[string]string{"email": "already registered"})
				return
			}
			logger.Error("failed to create user", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusCreated, user)
	}
}

// GetUserHandler обрабатывает GET /users/{id}.
func GetUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
			return
		}

		user, err := userService.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "User not found"})
				return
			}
			logger.Error("failed to get user", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, user)
	}
}

// UpdateUserHandler обрабатывает PUT /users/{id} (частичное обновление).
func UpdateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
			return
		}

		var req UpdateUserRequest
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

		user, err := userService.Update(r.Context(), id, service.UserUpdate{
			Name:     req.Name,
			Address:  req.Address,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "User not found"})
			case errors.Is(err, storage.ErrEmailTaken):
				logger.Warn("email already taken")
				writeJSON(logger, w, http.StatusBadRequest, map[string]string{"email": "already registered"})
			default:
				logger.Error("failed to update user", slog.Any("error", err))
				writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
			return
		}

		writeJSON(logger, w, http.StatusOK, user)
	}
}

// DeleteUserHandler обрабатывает DELETE /users/{id}.
func DeleteUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
			return
		}

		if err := userService.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeJSON(logger, w, http.StatusNotFound, errorResponse{Error: "User not found"})
				return
			}
			logger.Error("failed to delete user", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListUsersHandler обрабатывает GET /users?page&per_page.
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		page, perPage := pageParams(r)
		list, err := userService.List(r.Context(), page, perPage)
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, UserListResponse{
			Users:       list.Users,
			Total:       list.Total,
			Pages:       list.Pages,
			CurrentPage: page,
		})
	}
}
