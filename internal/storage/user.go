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
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// UserStorage описывает методы для работы с таблицей пользователей.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// CreateUser вставляет нового пользователя. Нарушение уникальности email
// превращается в ErrEmailTaken, а не в сырую ошибку драйвера.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (name, address, email, pass_hash) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Name, user.Address, user.Email, user.PassHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name, address, email, pass_hash FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Name, &user.Address, &user.Email, &user.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail получает пользователя по email (логин).
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name, address, email, pass_hash FROM users WHERE email = $1", email)
	if err := row.Scan(&user.ID, &user.Name, &user.Address, &user.Email, &user.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser перезаписывает все изменяемые поля пользователя.
// Частичность обновления собирается слоем сервиса до вызова.
func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = $1, address = $2, email = $3, pass_hash = $4 WHERE id = $5",
		user.Name, user.Address, user.Email, user.PassHash, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser удаляет пользователя; его заказы и их связи каскадируются на стороне БД
// (orders.user_id и order_product.order_id объявлены с ON DELETE CASCADE).
func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, address, email, pass_hash FROM users ORDER BY id LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Address, &user.Email, &user.PassHash); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// isUniqueViolation распознает нарушение уникального ограничения postgres (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
