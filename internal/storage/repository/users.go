package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// GetUserByPhone возвращает пользователя по номеру телефона.
func (s *Storage) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	const op = "storage.GetUserByPhone"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, phone, name, email, created_at, subscription_type, subscription_expiry
			  FROM users
			  WHERE phone = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, phone), op)
}

// GetUserByID возвращает пользователя по его идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, phone, name, email, created_at, subscription_type, subscription_expiry
			  FROM users
			  WHERE id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, id), op)
}

// UpsertUser сохраняет пользователя, обновляя запись при совпадении id.
func (s *Storage) UpsertUser(ctx context.Context, user *models.User) error {
	const op = "storage.UpsertUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, phone, name, email, created_at, subscription_type, subscription_expiry)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO UPDATE
			  SET name = EXCLUDED.name,
			      email = EXCLUDED.email,
			      subscription_type = EXCLUDED.subscription_type,
			      subscription_expiry = EXCLUDED.subscription_expiry`
	var subType sql.NullString
	if user.SubscriptionType != "" {
		subType = sql.NullString{String: string(user.SubscriptionType), Valid: true}
	}
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Phone, user.Name, user.Email, user.CreatedAt,
		subType, user.SubscriptionExpiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateAdmin добавляет административную учётную запись. Повторная
// вставка того же имени пользователя молча игнорируется.
func (s *Storage) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	const op = "storage.CreateAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admins (id, username, password_hash, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (username) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAdminByUsername возвращает административную учётную запись.
func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const op = "storage.GetAdminByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, created_at
			  FROM admins
			  WHERE username = $1`
	a := &models.Admin{}
	err := s.DB.QueryRowContext(ctx, query, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var subType sql.NullString
	var subExpiry sql.NullTime

	if err := row.Scan(&u.ID, &u.Phone, &u.Name, &u.Email, &u.CreatedAt,
		&subType, &subExpiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if subType.Valid {
		u.SubscriptionType = models.PlanType(subType.String)
	}
	if subExpiry.Valid {
		u.SubscriptionExpiry = &subExpiry.Time
	}
	return u, nil
}
