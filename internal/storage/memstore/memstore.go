// Package memstore реализует хранилище в памяти процесса. Используется
// как взаимозаменяемая альтернатива PostgreSQL для локальной разработки
// и тестов: та же условная семантика урегулирования и погашения кодов,
// но без внешнего движка.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// Store хранит все записи в картах под одним мьютексом. Методы отдают
// копии, чтобы вызывающие не делили память с хранилищем.
type Store struct {
	mu           sync.Mutex
	users        map[string]*models.User
	usersByPhone map[string]string
	payments     map[string]*models.Payment
	codes        map[string]*models.AccessCode
	sessions     map[string]*models.TestSession
	admins       map[string]*models.Admin
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		usersByPhone: make(map[string]string),
		payments:     make(map[string]*models.Payment),
		codes:        make(map[string]*models.AccessCode),
		sessions:     make(map[string]*models.TestSession),
		admins:       make(map[string]*models.Admin),
	}
}

// GetUserByPhone возвращает пользователя по номеру телефона.
func (s *Store) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	const op = "memstore.GetUserByPhone"
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByPhone[phone]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return copyUser(s.users[id]), nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	const op = "memstore.GetUserByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return copyUser(u), nil
}

// UpsertUser сохраняет пользователя, заменяя запись при совпадении id.
func (s *Store) UpsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = copyUser(user)
	s.usersByPhone[user.Phone] = user.ID
	return nil
}

// CreatePayment сохраняет новый платёж.
func (s *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments[payment.ID] = copyPayment(payment)
	return nil
}

// GetPaymentByID возвращает платёж по идентификатору.
func (s *Store) GetPaymentByID(_ context.Context, id string) (*models.Payment, error) {
	const op = "memstore.GetPaymentByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return copyPayment(p), nil
}

// ListPaymentsByUser возвращает платежи пользователя, свежие первыми.
func (s *Store) ListPaymentsByUser(_ context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			all = append(all, copyPayment(p))
		}
	}
	return pagePayments(all, limit, offset), nil
}

// ListRecentPayments возвращает платежи всех пользователей, свежие первыми.
func (s *Store) ListRecentPayments(_ context.Context, limit, offset int) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		all = append(all, copyPayment(p))
	}
	return pagePayments(all, limit, offset), nil
}

// CompletePayment переводит платёж в completed, сохраняет код и продлевает
// подписку как одну единицу под мьютексом. Возвращает false, если платёж
// уже урегулирован.
func (s *Store) CompletePayment(_ context.Context, payment *models.Payment, code *models.AccessCode) (bool, error) {
	const op = "memstore.CompletePayment"
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.payments[payment.ID]
	if !ok {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if stored.Status != models.PaymentPending {
		return false, nil
	}

	stored.Status = models.PaymentCompleted
	stored.CompletedAt = payment.CompletedAt
	stored.TransactionID = payment.TransactionID
	stored.AccessCode = payment.AccessCode

	s.codes[code.Code] = copyCode(code)

	if u, ok := s.users[payment.UserID]; ok {
		u.SubscriptionType = payment.PlanType
		expiry := code.ExpiresAt
		u.SubscriptionExpiry = &expiry
	}
	return true, nil
}

// FailPayment переводит платёж в failed. Возвращает false, если платёж
// уже урегулирован.
func (s *Store) FailPayment(_ context.Context, paymentID string, completedAt time.Time) (bool, error) {
	const op = "memstore.FailPayment"
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.payments[paymentID]
	if !ok {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if stored.Status != models.PaymentPending {
		return false, nil
	}
	stored.Status = models.PaymentFailed
	stored.CompletedAt = &completedAt
	return true, nil
}

// CreateAccessCode сохраняет новый код доступа.
func (s *Store) CreateAccessCode(_ context.Context, code *models.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code.Code] = copyCode(code)
	return nil
}

// GetAccessCodeByCode возвращает код доступа по точному значению.
func (s *Store) GetAccessCodeByCode(_ context.Context, code string) (*models.AccessCode, error) {
	const op = "memstore.GetAccessCodeByCode"
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return copyCode(c), nil
}

// MarkAccessCodeUsed гасит действующий код. Проверка и установка флага
// идут под одним мьютексом, так что из двух конкурирующих погашений
// пройдёт ровно одно.
func (s *Store) MarkAccessCodeUsed(_ context.Context, code string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok || c.IsUsed || !usedAt.Before(c.ExpiresAt) {
		return false, nil
	}
	c.IsUsed = true
	c.UsedAt = &usedAt
	return true, nil
}

// ListAccessCodesByUser возвращает историю кодов пользователя, свежие первыми.
func (s *Store) ListAccessCodesByUser(_ context.Context, userID string) ([]*models.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.AccessCode
	for _, c := range s.codes {
		if c.UserID == userID {
			result = append(result, copyCode(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// CreateTestSession сохраняет начатую попытку теста.
func (s *Store) CreateTestSession(_ context.Context, session *models.TestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = copySession(session)
	return nil
}

// GetTestSessionByID возвращает попытку теста по идентификатору.
func (s *Store) GetTestSessionByID(_ context.Context, id string) (*models.TestSession, error) {
	const op = "memstore.GetTestSessionByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return copySession(ts), nil
}

// UpdateTestSession сохраняет результат завершённой попытки.
func (s *Store) UpdateTestSession(_ context.Context, session *models.TestSession) error {
	const op = "memstore.UpdateTestSession"
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	stored.CompletedAt = session.CompletedAt
	stored.Score = session.Score
	stored.TotalQuestions = session.TotalQuestions
	stored.CorrectAnswers = session.CorrectAnswers
	return nil
}

// ListTestSessionsByUser возвращает историю попыток пользователя, свежие первыми.
func (s *Store) ListTestSessionsByUser(_ context.Context, userID string) ([]*models.TestSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.TestSession
	for _, ts := range s.sessions {
		if ts.UserID == userID {
			result = append(result, copySession(ts))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result, nil
}

// GetAdminByUsername возвращает административную учётную запись.
func (s *Store) GetAdminByUsername(_ context.Context, username string) (*models.Admin, error) {
	const op = "memstore.GetAdminByUsername"
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// CreateAdmin добавляет административную учётную запись. Память не
// переживает перезапуск, поэтому учётки задаются при старте процесса.
func (s *Store) CreateAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[admin.Username]; ok {
		return nil
	}
	cp := *admin
	s.admins[admin.Username] = &cp
	return nil
}

func pagePayments(all []*models.Payment, limit, offset int) []*models.Payment {
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.SubscriptionExpiry != nil {
		t := *u.SubscriptionExpiry
		cp.SubscriptionExpiry = &t
	}
	return &cp
}

func copyPayment(p *models.Payment) *models.Payment {
	cp := *p
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func copyCode(c *models.AccessCode) *models.AccessCode {
	cp := *c
	if c.UsedAt != nil {
		t := *c.UsedAt
		cp.UsedAt = &t
	}
	return &cp
}

func copySession(ts *models.TestSession) *models.TestSession {
	cp := *ts
	if ts.CompletedAt != nil {
		t := *ts.CompletedAt
		cp.CompletedAt = &t
	}
	if ts.Score != nil {
		v := *ts.Score
		cp.Score = &v
	}
	if ts.TotalQuestions != nil {
		v := *ts.TotalQuestions
		cp.TotalQuestions = &v
	}
	if ts.CorrectAnswers != nil {
		v := *ts.CorrectAnswers
		cp.CorrectAnswers = &v
	}
	return &cp
}
