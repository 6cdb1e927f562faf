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

// CreatePayment сохраняет новый платёж в статусе pending.
func (s *Storage) CreatePayment(ctx context.Context, payment *models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (id, user_id, amount, currency, payment_method, phone,
			      status, subscription_type, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := s.DB.ExecContext(ctx, query,
		payment.ID, payment.UserID, payment.Amount, payment.Currency,
		payment.PaymentMethod, payment.Phone, payment.Status,
		payment.PlanType, payment.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentByID возвращает платёж по идентификатору.
func (s *Storage) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPaymentByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectPayment + ` WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPaymentsByUser возвращает платежи пользователя, свежие первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	query := selectPayment + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return s.listPayments(ctx, op, query, userID, limit, offset)
}

// ListRecentPayments возвращает платежи всех пользователей, свежие первыми.
func (s *Storage) ListRecentPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListRecentPayments"
	query := selectPayment + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return s.listPayments(ctx, op, query, limit, offset)
}

// CompletePayment переводит платёж из pending в completed и одной
// транзакцией сохраняет выпущенный код и продлённую подписку.
// Возвращает false, если платёж уже урегулирован.
func (s *Storage) CompletePayment(ctx context.Context, payment *models.Payment, code *models.AccessCode) (bool, error) {
	const op = "storage.CompletePayment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE payments
		 SET status = $1, completed_at = $2, transaction_id = $3, access_code = $4
		 WHERE id = $5 AND status = $6`,
		models.PaymentCompleted, payment.CompletedAt, payment.TransactionID,
		payment.AccessCode, payment.ID, models.PaymentPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO access_codes (code, user_id, subscription_type, created_at, expires_at, is_used)
		 VALUES ($1, $2, $3, $4, $5, FALSE)`,
		code.Code, code.UserID, code.PlanType, code.CreatedAt, code.ExpiresAt); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users
		 SET subscription_type = $1, subscription_expiry = $2
		 WHERE id = $3`,
		payment.PlanType, code.ExpiresAt, payment.UserID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// FailPayment переводит платёж из pending в failed. Возвращает false,
// если платёж уже урегулирован.
func (s *Storage) FailPayment(ctx context.Context, paymentID string, completedAt time.Time) (bool, error) {
	const op = "storage.FailPayment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments
		 SET status = $1, completed_at = $2
		 WHERE id = $3 AND status = $4`,
		models.PaymentFailed, completedAt, paymentID, models.PaymentPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

const selectPayment = `SELECT id, user_id, amount, currency, payment_method, phone, status,
		subscription_type, created_at, completed_at, transaction_id, access_code
	FROM payments`

func (s *Storage) listPayments(ctx context.Context, op, query string, args ...any) ([]*models.Payment, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanPayment(scan func(dest ...any) error) (*models.Payment, error) {
	p := &models.Payment{}
	var completedAt sql.NullTime
	var transactionID, accessCode sql.NullString

	if err := scan(&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.PaymentMethod,
		&p.Phone, &p.Status, &p.PlanType, &p.CreatedAt,
		&completedAt, &transactionID, &accessCode); err != nil {
		return nil, err
	}

	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	if transactionID.Valid {
		p.TransactionID = transactionID.String
	}
	if accessCode.Valid {
		p.AccessCode = accessCode.String
	}
	return p, nil
}
