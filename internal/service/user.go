package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// UserUpdate описывает частичное обновление пользователя.
// nil означает "поле не передано, оставить как есть".
type UserUpdate struct {
	Name     *string
	Address  *string
	Email    *string
	Password *string
}

// UserList — страница списка пользователей.
type UserList struct {
	Users []*models.User
	Total int
	Pages int
}

// UserService определяет интерфейс для операций над пользователями.
type UserService interface {
	Create(ctx context.Context, name, address, email, password string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, perPage int) (*UserList, error)
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{log: log, userRepo: userRepo}
}

// Create регистрирует пользователя. Пароль хэшируется через bcrypt
// (соль генерируется автоматически), в базу попадает только хэш.
func (s *userService) Create(ctx context.Context, name, address, email, password string) (*models.User, error) {
	const op = "service.UserService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("creating user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user := &models.User{
		Name:     name,
		Address:  address,
		Email:    email,
		PassHash: passHash,
	}
	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", created.ID))
	return created, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.UserService.Get"
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Update применяет частичное обновление: непереданные поля сохраняют текущее
// значение, новый пароль перехэшируется.
func (s *userService) Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	const op = "service.UserService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Address != nil {
		user.Address = *upd.Address
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Password != nil {
		passHash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}
		user.PassHash = passHash
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		logger.Error("failed to update user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user updated")
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	const op = "service.UserService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("user deleted")
	return nil
}

func (s *userService) List(ctx context.Context, page, perPage int) (*UserList, error) {
	const op = "service.UserService.List"

	total, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	users, err := s.userRepo.ListUsers(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	if users == nil {
		users = []*models.User{}
	}

	return &UserList{
		Users: users,
		Total: total,
		Pages: totalPages(total, perPage),
	}, nil
}

// totalPages считает количество страниц: ceil(total / perPage).
func totalPages(total, perPage int) int {
	return (total + perPage - 1) / perPage
}
