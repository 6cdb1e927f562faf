package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// CreateAccessCode сохраняет новый код доступа.
func (s *Storage) CreateAccessCode(ctx context.Context, code *models.AccessCode) error {
	const op = "storage.CreateAccessCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO access_codes (code, user_id, subscription_type, created_at, expires_at, is_used, used_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query,
		code.Code, code.UserID, code.PlanType, code.CreatedAt,
		code.ExpiresAt, code.IsUsed, code.UsedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAccessCodeByCode возвращает код доступа по точному значению.
func (s *Storage) GetAccessCodeByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	const op = "storage.GetAccessCodeByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code, user_id, subscription_type, created_at, expires_at, is_used, used_at
			  FROM access_codes
			  WHERE code = $1`
	c := &models.AccessCode{}
	var usedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, code).
		Scan(&c.Code, &c.UserID, &c.PlanType, &c.CreatedAt, &c.ExpiresAt, &c.IsUsed, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if usedAt.Valid {
		c.UsedAt = &usedAt.Time
	}
	return c, nil
}

// MarkAccessCodeUsed гасит код условным обновлением: проверка валидности
// и установка флага выполняются одним оператором, поэтому из двух
// конкурирующих погашений пройдёт ровно одно.
func (s *Storage) MarkAccessCodeUsed(ctx context.Context, code string, usedAt time.Time) (bool, error) {
	const op = "storage.MarkAccessCodeUsed"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE access_codes
		 SET is_used = TRUE, used_at = $1
		 WHERE code = $2 AND is_used = FALSE AND expires_at > $1`,
		usedAt, code)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// ListAccessCodesByUser возвращает историю кодов пользователя, свежие первыми.
func (s *Storage) ListAccessCodesByUser(ctx context.Context, userID string) ([]*models.AccessCode, error) {
	const op = "storage.ListAccessCodesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code, user_id, subscription_type, created_at, expires_at, is_used, used_at
			  FROM access_codes
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccessCode
	for rows.Next() {
		c := &models.AccessCode{}
		var usedAt sql.NullTime
		if err := rows.Scan(&c.Code, &c.UserID, &c.PlanType, &c.CreatedAt,
			&c.ExpiresAt, &c.IsUsed, &usedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if usedAt.Valid {
			c.UsedAt = &usedAt.Time
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
