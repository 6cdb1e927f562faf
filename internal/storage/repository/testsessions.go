package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// CreateTestSession сохраняет начатую попытку теста.
func (s *Storage) CreateTestSession(ctx context.Context, session *models.TestSession) error {
	const op = "storage.CreateTestSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO test_sessions (id, user_id, started_at, language, test_type)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		session.ID, session.UserID, session.StartedAt,
		session.Language, session.TestType); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTestSessionByID возвращает попытку теста по идентификатору.
func (s *Storage) GetTestSessionByID(ctx context.Context, id string) (*models.TestSession, error) {
	const op = "storage.GetTestSessionByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, started_at, completed_at, score, total_questions,
			      correct_answers, language, test_type
			  FROM test_sessions
			  WHERE id = $1`
	ts, err := scanTestSession(s.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ts, nil
}

// UpdateTestSession сохраняет результат завершённой попытки.
func (s *Storage) UpdateTestSession(ctx context.Context, session *models.TestSession) error {
	const op = "storage.UpdateTestSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE test_sessions
			  SET completed_at = $1, score = $2, total_questions = $3, correct_answers = $4
			  WHERE id = $5`
	if _, err := s.DB.ExecContext(ctx, query,
		session.CompletedAt, session.Score, session.TotalQuestions,
		session.CorrectAnswers, session.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListTestSessionsByUser возвращает историю попыток пользователя, свежие первыми.
func (s *Storage) ListTestSessionsByUser(ctx context.Context, userID string) ([]*models.TestSession, error) {
	const op = "storage.ListTestSessionsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, started_at, completed_at, score, total_questions,
			      correct_answers, language, test_type
			  FROM test_sessions
			  WHERE user_id = $1
			  ORDER BY started_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TestSession
	for rows.Next() {
		ts, err := scanTestSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ts)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanTestSession(scan func(dest ...any) error) (*models.TestSession, error) {
	ts := &models.TestSession{}
	var completedAt sql.NullTime
	var score, totalQuestions, correctAnswers sql.NullInt64

	if err := scan(&ts.ID, &ts.UserID, &ts.StartedAt, &completedAt,
		&score, &totalQuestions, &correctAnswers, &ts.Language, &ts.TestType); err != nil {
		return nil, err
	}

	if completedAt.Valid {
		ts.CompletedAt = &completedAt.Time
	}
	if score.Valid {
		v := int(score.Int64)
		ts.Score = &v
	}
	if totalQuestions.Valid {
		v := int(totalQuestions.Int64)
		ts.TotalQuestions = &v
	}
	if correctAnswers.Valid {
		v := int(correctAnswers.Int64)
		ts.CorrectAnswers = &v
	}
	return ts, nil
}
