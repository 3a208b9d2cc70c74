package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	security "github.com/linemk/ecommerce-api/internal/jwt-new"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// ErrInvalidCredentials — неизвестный email или неверный пароль.
// Наружу оба случая выглядят одинаково.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService определяет интерфейс для аутентификации.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) AuthService {
	return &authService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

// Login осуществляет аутентификацию пользователя.
// Пользователь ищется по email, введённый пароль сравнивается с bcrypt-хэшем
// (сравнение константное по времени внутри bcrypt). Регистрация здесь не
// выполняется — для неё есть открытый POST /users.
// После успешной проверки генерируется JWT-токен (секрет для подписи берется из переменной окружения).
func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", ErrInvalidCredentials
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", ErrInvalidCredentials
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}
