// Package testsession ведёт записи попыток теста. Содержимое теста
// живёт в другом сервисе, здесь только учёт: начало, результат, история.
package testsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// Ошибки валидации запроса на попытку теста.
var (
	ErrInvalidLanguage = errors.New("invalid test language")
	ErrInvalidTestType = errors.New("invalid test type")
)

// Repository определяет методы хранилища, нужные учёту попыток.
type Repository interface {
	CreateTestSession(ctx context.Context, session *models.TestSession) error
	GetTestSessionByID(ctx context.Context, id string) (*models.TestSession, error)
	UpdateTestSession(ctx context.Context, session *models.TestSession) error
	ListTestSessionsByUser(ctx context.Context, userID string) ([]*models.TestSession, error)
}

// Service реализует учёт попыток теста.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис попыток теста.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Start записывает начало попытки.
func (s *Service) Start(ctx context.Context, userID string, language models.TestLanguage, testType models.TestType) (*models.TestSession, error) {
	const op = "testsession.Start"

	if !language.Valid() {
		return nil, ErrInvalidLanguage
	}
	if !testType.Valid() {
		return nil, ErrInvalidTestType
	}

	session := &models.TestSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartedAt: time.Now(),
		Language:  language,
		TestType:  testType,
	}
	if err := s.repo.CreateTestSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("test session started",
		sl.Op(op), slog.String("session_id", session.ID))
	return session, nil
}

// Finish сохраняет результат попытки. Чужая попытка для вызывающего
// неотличима от несуществующей.
func (s *Service) Finish(ctx context.Context, userID, sessionID string, score, totalQuestions, correctAnswers int) (*models.TestSession, error) {
	const op = "testsession.Finish"

	session, err := s.repo.GetTestSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	now := time.Now()
	session.CompletedAt = &now
	session.Score = &score
	session.TotalQuestions = &totalQuestions
	session.CorrectAnswers = &correctAnswers
	if err := s.repo.UpdateTestSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("test session finished",
		sl.Op(op), slog.String("session_id", session.ID), slog.Int("score", score))
	return session, nil
}

// History возвращает попытки пользователя, свежие первыми.
func (s *Service) History(ctx context.Context, userID string) ([]*models.TestSession, error) {
	return s.repo.ListTestSessionsByUser(ctx, userID)
}
