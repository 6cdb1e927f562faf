package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/settlement"
	"github.com/mwalimuclement/theory-access/internal/storage/memstore"
)

// stubOracle возвращает заранее заданный исход без задержки.
type stubOracle struct {
	outcome settlement.Outcome
	err     error
}

func (o stubOracle) Resolve(_ context.Context, _ string) (settlement.Outcome, error) {
	return o.outcome, o.err
}

// blockingOracle не отвечает, пока его не отпустят: платежи остаются
// в статусе pending на время теста.
type blockingOracle struct {
	release chan struct{}
}

func (o *blockingOracle) Resolve(ctx context.Context, _ string) (settlement.Outcome, error) {
	select {
	case <-o.release:
		return settlement.OutcomeCompleted, nil
	case <-ctx.Done():
		return settlement.OutcomeFailed, ctx.Err()
	}
}

type capturePublisher struct {
	events []models.CodeIssuedEvent
}

func (p *capturePublisher) PublishCodeIssued(event models.CodeIssuedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Initiate_Validation(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		plan        models.PlanType
		method      models.PaymentMethod
		expectedErr error
	}{
		{
			name:        "invalid phone",
			phone:       "12345",
			plan:        models.PlanSingle,
			method:      models.MethodMTN,
			expectedErr: ErrInvalidPhone,
		},
		{
			name:        "unknown plan",
			phone:       "0781234567",
			plan:        models.PlanType("yearly"),
			method:      models.MethodMTN,
			expectedErr: ErrInvalidPlan,
		},
		{
			name:        "unknown payment method",
			phone:       "0781234567",
			plan:        models.PlanSingle,
			method:      models.PaymentMethod("VISA"),
			expectedErr: ErrInvalidPaymentMethod,
		},
		{
			name:        "empty phone",
			phone:       "",
			plan:        models.PlanSingle,
			method:      models.MethodMTN,
			expectedErr: ErrInvalidPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			svc := New(store, stubOracle{}, nil, newNoopLogger())

			p, err := svc.Initiate(context.Background(), tt.phone, tt.plan, tt.method)

			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestService_Initiate_CreatesPendingPayment(t *testing.T) {
	store := memstore.New()
	oracle := &blockingOracle{release: make(chan struct{})}
	svc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)

	p, err := svc.Initiate(context.Background(), "0781234567", models.PlanDaily, models.MethodMTN)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, 1000, p.Amount)
	assert.Equal(t, models.Currency, p.Currency)
	assert.Empty(t, p.AccessCode)
	assert.Empty(t, p.TransactionID)
	assert.Nil(t, p.CompletedAt)

	got, err := svc.Verify(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)

	assert.Equal(t, "781234567", p.Phone)

	user, err := store.GetUserByPhone(context.Background(), "781234567")
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
}

func TestService_Initiate_ReusesExistingUser(t *testing.T) {
	store := memstore.New()
	oracle := &blockingOracle{release: make(chan struct{})}
	svc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)

	// Разные написания одного номера сводятся к одному пользователю
	first, err := svc.Initiate(context.Background(), "0781234567", models.PlanSingle, models.MethodMTN)
	require.NoError(t, err)
	second, err := svc.Initiate(context.Background(), "+250781234567", models.PlanWeekly, models.MethodMTN)
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
}

func TestService_Initiate_AnyMethodForAnyPhone(t *testing.T) {
	store := memstore.New()
	oracle := &blockingOracle{release: make(chan struct{})}
	svc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)

	// Метод оплаты проверяется только на принадлежность закрытому
	// набору и не обязан совпадать с оператором номера.
	tests := []struct {
		phone  string
		method models.PaymentMethod
	}{
		{"0721234567", models.MethodMTN},
		{"0781234567", models.MethodAirtel},
		{"0751234567", models.MethodMTN},
	}
	for _, tt := range tests {
		p, err := svc.Initiate(context.Background(), tt.phone, models.PlanDaily, tt.method)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, p.Status)
		assert.Equal(t, tt.method, p.PaymentMethod)
	}
}

func TestService_Settle_Completed(t *testing.T) {
	store := memstore.New()
	publisher := &capturePublisher{}
	svc := New(store, stubOracle{outcome: settlement.OutcomeCompleted}, publisher, newNoopLogger())

	oracle := &blockingOracle{release: make(chan struct{})}
	pendingSvc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)
	p, err := pendingSvc.Initiate(context.Background(), "0721234567", models.PlanWeekly, models.MethodAirtel)
	require.NoError(t, err)

	svc.settle(context.Background(), p.ID)

	got, err := store.GetPaymentByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Len(t, got.AccessCode, 8)
	assert.True(t, strings.HasPrefix(got.TransactionID, "TXN_"))

	code, err := store.GetAccessCodeByCode(context.Background(), got.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, code.UserID)
	assert.False(t, code.IsUsed)
	wantExpiry := got.CompletedAt.Add(7 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, code.ExpiresAt, time.Second)

	user, err := store.GetUserByID(context.Background(), p.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanWeekly, user.SubscriptionType)
	require.NotNil(t, user.SubscriptionExpiry)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, p.ID, publisher.events[0].PaymentID)
	assert.Equal(t, got.AccessCode, publisher.events[0].Code)
	assert.Equal(t, 4000, publisher.events[0].Amount)
}

func TestService_Settle_Failed(t *testing.T) {
	store := memstore.New()
	publisher := &capturePublisher{}
	svc := New(store, stubOracle{outcome: settlement.OutcomeFailed}, publisher, newNoopLogger())

	oracle := &blockingOracle{release: make(chan struct{})}
	pendingSvc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)
	p, err := pendingSvc.Initiate(context.Background(), "0781234567", models.PlanSingle, models.MethodMTN)
	require.NoError(t, err)

	svc.settle(context.Background(), p.ID)

	got, err := store.GetPaymentByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.AccessCode)
	assert.Empty(t, got.TransactionID)

	codes, err := store.ListAccessCodesByUser(context.Background(), p.UserID)
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Empty(t, publisher.events)
}

func TestService_Settle_OracleError_LeavesPending(t *testing.T) {
	store := memstore.New()
	svc := New(store, stubOracle{err: errors.New("provider unreachable")}, nil, newNoopLogger())

	oracle := &blockingOracle{release: make(chan struct{})}
	pendingSvc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)
	p, err := pendingSvc.Initiate(context.Background(), "0781234567", models.PlanSingle, models.MethodMTN)
	require.NoError(t, err)

	svc.settle(context.Background(), p.ID)

	got, err := store.GetPaymentByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
}

func TestService_Settle_Idempotent(t *testing.T) {
	store := memstore.New()
	publisher := &capturePublisher{}
	completeSvc := New(store, stubOracle{outcome: settlement.OutcomeCompleted}, publisher, newNoopLogger())
	failSvc := New(store, stubOracle{outcome: settlement.OutcomeFailed}, publisher, newNoopLogger())

	oracle := &blockingOracle{release: make(chan struct{})}
	pendingSvc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)
	p, err := pendingSvc.Initiate(context.Background(), "0781234567", models.PlanSingle, models.MethodMTN)
	require.NoError(t, err)

	completeSvc.settle(context.Background(), p.ID)
	first, err := store.GetPaymentByID(context.Background(), p.ID)
	require.NoError(t, err)

	// Повторное урегулирование не трогает терминальный платёж.
	failSvc.settle(context.Background(), p.ID)
	completeSvc.settle(context.Background(), p.ID)

	got, err := store.GetPaymentByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	assert.Equal(t, first.AccessCode, got.AccessCode)
	assert.Equal(t, first.TransactionID, got.TransactionID)
	assert.Len(t, publisher.events, 1)
}

func TestService_ListByUser(t *testing.T) {
	store := memstore.New()
	oracle := &blockingOracle{release: make(chan struct{})}
	svc := New(store, oracle, nil, newNoopLogger())
	defer close(oracle.release)

	p1, err := svc.Initiate(context.Background(), "0781234567", models.PlanSingle, models.MethodMTN)
	require.NoError(t, err)
	_, err = svc.Initiate(context.Background(), "0721234567", models.PlanSingle, models.MethodAirtel)
	require.NoError(t, err)

	list, err := svc.ListByUser(context.Background(), p1.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p1.ID, list[0].ID)

	all, err := svc.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
