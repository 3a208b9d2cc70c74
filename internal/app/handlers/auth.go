package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/ecommerce-api/internal/service"
)

// LoginRequest представляет структуру запроса для аутентификации с тегами валидации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse представляет структуру ответа с JWT-токеном
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// LoginHandler – HTTP-обработчик для POST /login.
// Неизвестный email и неверный пароль наружу неразличимы: оба дают 401.
func LoginHandler(log *slog.Logger, authService service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeValidationErrors(logger, w, err)
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				logger.Warn("login rejected")
				writeJSON(logger, w, http.StatusUnauthorized, messageResponse{Message: "Bad email or password"})
				return
			}
			logger.Error("login failed", slog.Any("error", err))
			writeJSON(logger, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		writeJSON(logger, w, http.StatusOK, LoginResponse{AccessToken: token})
	}
}
