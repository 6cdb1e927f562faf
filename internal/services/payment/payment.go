// Package payment реализует жизненный цикл платежа: проверку запроса,
// создание pending-записи, асинхронное урегулирование через оракула
// и выпуск кода доступа при успехе.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwalimuclement/theory-access/internal/lib/phone"
	"github.com/mwalimuclement/theory-access/internal/lib/randcode"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/metrics"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/plans"
	"github.com/mwalimuclement/theory-access/internal/settlement"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// Ошибки валидации запроса на оплату.
var (
	ErrInvalidPhone         = errors.New("invalid phone number format")
	ErrInvalidPlan          = errors.New("invalid payment plan")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Repository определяет методы хранилища, нужные жизненному циклу платежа.
type Repository interface {
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	ListRecentPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
	CompletePayment(ctx context.Context, payment *models.Payment, code *models.AccessCode) (bool, error)
	FailPayment(ctx context.Context, paymentID string, completedAt time.Time) (bool, error)
}

// Publisher отправляет событие о выпущенном коде в очередь уведомлений.
type Publisher interface {
	PublishCodeIssued(event models.CodeIssuedEvent) error
}

// Service оркестрирует платёж от создания до терминального статуса.
type Service struct {
	repo      Repository
	oracle    settlement.Oracle
	publisher Publisher
	log       *slog.Logger
}

// New создаёт сервис платежей. publisher может быть nil, тогда события
// о выпущенных кодах не публикуются.
func New(repo Repository, oracle settlement.Oracle, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		oracle:    oracle,
		publisher: publisher,
		log:       log,
	}
}

// Initiate проверяет запрос, находит или создаёт пользователя по номеру,
// сохраняет платёж в статусе pending и запускает фоновое урегулирование.
// Возвращает созданный платёж, не дожидаясь исхода.
func (s *Service) Initiate(ctx context.Context, rawPhone string, planType models.PlanType, method models.PaymentMethod) (*models.Payment, error) {
	const op = "payment.Initiate"

	if !phone.Validate(rawPhone) {
		return nil, ErrInvalidPhone
	}
	msisdn := phone.Normalize(rawPhone)
	plan, ok := plans.Find(planType)
	if !ok {
		return nil, ErrInvalidPlan
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	user, err := s.getOrCreateUser(ctx, msisdn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &models.Payment{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		Amount:        plan.Price,
		Currency:      models.Currency,
		PaymentMethod: method,
		Phone:         msisdn,
		Status:        models.PaymentPending,
		PlanType:      planType,
		CreatedAt:     time.Now(),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PaymentsInitiated.Inc()

	s.log.Info("payment initiated",
		sl.Op(op),
		slog.String("payment_id", p.ID),
		slog.String("plan", string(planType)),
		slog.String("method", string(method)))

	// Запрос не ждёт провайдера: урегулирование живёт в собственном
	// контексте и завершится даже после ухода клиента.
	go s.settle(context.Background(), p.ID)

	return p, nil
}

// Verify возвращает текущее состояние платежа. Клиент опрашивает этот
// метод до терминального статуса.
func (s *Service) Verify(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.repo.GetPaymentByID(ctx, paymentID)
}

// ListByUser возвращает историю платежей пользователя.
func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userID, limit, offset)
}

// ListRecent возвращает последние платежи всех пользователей.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	return s.repo.ListRecentPayments(ctx, limit, offset)
}

// settle ждёт исход от оракула и применяет ровно один терминальный
// переход. Условные записи хранилища делают повторное урегулирование
// безвредным no-op.
func (s *Service) settle(ctx context.Context, paymentID string) {
	const op = "payment.settle"
	log := s.log.With(sl.Op(op), slog.String("payment_id", paymentID))

	outcome, err := s.oracle.Resolve(ctx, paymentID)
	if err != nil {
		log.Error("settlement oracle failed, payment left pending", sl.Err(err))
		return
	}

	if outcome == settlement.OutcomeCompleted {
		if err := s.complete(ctx, paymentID); err != nil {
			log.Error("failed to apply completed settlement", sl.Err(err))
		}
		return
	}

	applied, err := s.repo.FailPayment(ctx, paymentID, time.Now())
	if err != nil {
		log.Error("failed to mark payment failed", sl.Err(err))
		return
	}
	if applied {
		metrics.PaymentsSettled.WithLabelValues("failed").Inc()
		log.Info("payment failed")
	}
}

func (s *Service) complete(ctx context.Context, paymentID string) error {
	const op = "payment.complete"

	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	plan, ok := plans.Find(p.PlanType)
	if !ok {
		return fmt.Errorf("%s: unknown plan %q", op, p.PlanType)
	}

	code, err := randcode.AccessCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	txID, err := randcode.TransactionID()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	expiry := now.Add(plans.Duration(plan))

	settled := *p
	settled.CompletedAt = &now
	settled.TransactionID = txID
	settled.AccessCode = code

	accessCode := &models.AccessCode{
		Code:      code,
		UserID:    p.UserID,
		PlanType:  p.PlanType,
		CreatedAt: now,
		ExpiresAt: expiry,
	}

	applied, err := s.repo.CompletePayment(ctx, &settled, accessCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		return nil
	}
	metrics.PaymentsSettled.WithLabelValues("completed").Inc()

	s.log.Info("payment completed",
		sl.Op(op),
		slog.String("payment_id", p.ID),
		slog.String("transaction_id", txID))

	s.publishCodeIssued(ctx, &settled, accessCode)
	return nil
}

func (s *Service) publishCodeIssued(ctx context.Context, p *models.Payment, code *models.AccessCode) {
	const op = "payment.publishCodeIssued"
	if s.publisher == nil {
		return
	}

	event := models.CodeIssuedEvent{
		PaymentID: p.ID,
		Phone:     p.Phone,
		Code:      code.Code,
		PlanType:  p.PlanType,
		Amount:    p.Amount,
		ExpiresAt: code.ExpiresAt,
	}
	if user, err := s.repo.GetUserByID(ctx, p.UserID); err == nil {
		event.Email = user.Email
	}

	if err := s.publisher.PublishCodeIssued(event); err != nil {
		s.log.Warn("failed to publish code issued event", sl.Op(op), sl.Err(err))
	}
}

func (s *Service) getOrCreateUser(ctx context.Context, msisdn string) (*models.User, error) {
	user, err := s.repo.GetUserByPhone(ctx, msisdn)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:        uuid.New().String(),
		Phone:     msisdn,
		CreatedAt: time.Now(),
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
