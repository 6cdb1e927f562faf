// Package access реализует вход по коду доступа, проверку права на тест
// и сессии: погашение кода атомарно, причина отказа не раскрывается.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mwalimuclement/theory-access/internal/lib/jwt"
	"github.com/mwalimuclement/theory-access/internal/lib/password"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/metrics"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/sessions"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// ErrAuthenticationFailed возвращается при любом отказе входа:
// неизвестный, использованный и просроченный код для вызывающего
// неразличимы, как и неверная пара логин-пароль администратора.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Repository определяет методы хранилища, нужные входу по коду.
type Repository interface {
	GetAccessCodeByCode(ctx context.Context, code string) (*models.AccessCode, error)
	MarkAccessCodeUsed(ctx context.Context, code string, usedAt time.Time) (bool, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListAccessCodesByUser(ctx context.Context, userID string) ([]*models.AccessCode, error)
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// SessionStore описывает серверное хранилище сессий.
type SessionStore interface {
	Open(ctx context.Context, tokenID string, rec sessions.Record, ttl time.Duration) error
	Close(ctx context.Context, tokenID string) error
}

// Service реализует вход, выход и проверку права доступа.
type Service struct {
	repo          Repository
	sessionStore  SessionStore
	tokens        jwt.Maker
	adminTokenTTL time.Duration
	log           *slog.Logger
}

// New создаёт сервис доступа. adminTokenTTL задаёт срок жизни
// административных сессий, пользовательские живут до конца окна кода.
func New(repo Repository, sessionStore SessionStore, tokens jwt.Maker, adminTokenTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		sessionStore:  sessionStore,
		tokens:        tokens,
		adminTokenTTL: adminTokenTTL,
		log:           log,
	}
}

// LoginWithCode гасит код доступа и открывает сессию его владельца.
// Код нормализуется к верхнему регистру. Чтения и выпуск токена идут
// до погашения, чтобы сбой хранилища не сжёг код без открытой сессии;
// единственным арбитром остаётся условная запись, поэтому из двух
// конкурирующих входов по одному коду пройдёт ровно один.
func (s *Service) LoginWithCode(ctx context.Context, rawCode string) (*models.User, string, error) {
	const op = "access.LoginWithCode"

	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, "", ErrAuthenticationFailed
	}

	accessCode, err := s.repo.GetAccessCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.CodeRedemptionsRejected.Inc()
			s.log.Info("access code rejected", sl.Op(op))
			return nil, "", ErrAuthenticationFailed
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUserByID(ctx, accessCode.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	ttl := time.Until(accessCode.ExpiresAt)
	token, claims, err := s.tokens.GenerateToken(user.ID, jwt.RoleUser, ttl)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	used, err := s.repo.MarkAccessCodeUsed(ctx, code, now)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !used {
		metrics.CodeRedemptionsRejected.Inc()
		s.log.Info("access code rejected", sl.Op(op))
		return nil, "", ErrAuthenticationFailed
	}

	rec := sessions.Record{UserID: user.ID, Role: jwt.RoleUser, CreatedAt: now}
	if err := s.sessionStore.Open(ctx, claims.ID, rec, ttl); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.CodesRedeemed.Inc()
	s.log.Info("access code redeemed",
		sl.Op(op), slog.String("user_id", user.ID))
	return user, token, nil
}

// AdminLogin проверяет пару логин-пароль и открывает административную
// сессию. Любой отказ неотличим от неверного пароля.
func (s *Service) AdminLogin(ctx context.Context, username, pass string) (string, error) {
	const op = "access.AdminLogin"

	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	if err := password.CompareHash(admin.PasswordHash, pass); err != nil {
		return "", ErrAuthenticationFailed
	}

	token, claims, err := s.tokens.GenerateToken(admin.ID, jwt.RoleAdmin, s.adminTokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	rec := sessions.Record{UserID: admin.ID, Role: jwt.RoleAdmin, CreatedAt: time.Now()}
	if err := s.sessionStore.Open(ctx, claims.ID, rec, s.adminTokenTTL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("admin logged in", sl.Op(op), slog.String("username", username))
	return token, nil
}

// Logout отзывает сессию по идентификатору токена.
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	const op = "access.Logout"
	if err := s.sessionStore.Close(ctx, tokenID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Profile возвращает пользователя по идентификатору.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// Codes возвращает историю кодов пользователя.
func (s *Service) Codes(ctx context.Context, userID string) ([]*models.AccessCode, error) {
	return s.repo.ListAccessCodesByUser(ctx, userID)
}

// CheckUserAccess чистый предикат: окно подписки задано и текущий
// момент строго раньше его конца. Совпадение с границей даёт false.
func CheckUserAccess(user *models.User, now time.Time) bool {
	if user == nil || user.SubscriptionExpiry == nil {
		return false
	}
	return now.Before(*user.SubscriptionExpiry)
}
