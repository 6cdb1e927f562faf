// Package storage описывает абстрактный интерфейс хранилища, который
// потребляет бизнес-логика. Две взаимозаменяемые реализации, PostgreSQL
// и память процесса, выбираются при старте по конфигурации.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mwalimuclement/theory-access/internal/models"
)

// ErrNotFound возвращается методами чтения, когда запись отсутствует.
var ErrNotFound = errors.New("record not found")

// Store объединяет операции над пользователями, платежами, кодами
// доступа и сессиями тестов.
//
// CompletePayment и FailPayment условны по статусу pending и сообщают,
// был ли применён переход: повторное урегулирование того же платежа
// является no-op. CompletePayment применяет терминальный статус, выпуск
// кода и продление подписки как одну единицу, чтобы сбой посередине не
// оставил завершённый платёж без кода.
type Store interface {
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	ListRecentPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
	CompletePayment(ctx context.Context, payment *models.Payment, code *models.AccessCode) (bool, error)
	FailPayment(ctx context.Context, paymentID string, completedAt time.Time) (bool, error)

	CreateAccessCode(ctx context.Context, code *models.AccessCode) error
	GetAccessCodeByCode(ctx context.Context, code string) (*models.AccessCode, error)
	// MarkAccessCodeUsed атомарно гасит действующий код и сообщает,
	// удалось ли это: false значит код отсутствует, уже использован
	// или просрочен.
	MarkAccessCodeUsed(ctx context.Context, code string, usedAt time.Time) (bool, error)
	ListAccessCodesByUser(ctx context.Context, userID string) ([]*models.AccessCode, error)

	CreateTestSession(ctx context.Context, session *models.TestSession) error
	GetTestSessionByID(ctx context.Context, id string) (*models.TestSession, error)
	UpdateTestSession(ctx context.Context, session *models.TestSession) error
	ListTestSessionsByUser(ctx context.Context, userID string) ([]*models.TestSession, error)

	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}
