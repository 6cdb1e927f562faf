package models

import "time"

// PaymentStatus статус платежа. Переходы только pending -> completed
// или pending -> failed, оба состояния терминальные.
type PaymentStatus string

const (
	// PaymentPending платёж создан и ждёт подтверждения провайдера.
	PaymentPending PaymentStatus = "pending"
	// PaymentCompleted платёж подтверждён, код доступа выпущен.
	PaymentCompleted PaymentStatus = "completed"
	// PaymentFailed провайдер отклонил платёж.
	PaymentFailed PaymentStatus = "failed"
	// PaymentCancelled зарезервирован, текущий поток его не выставляет.
	PaymentCancelled PaymentStatus = "cancelled"
)

// PaymentMethod мобильный оператор, через которого идёт оплата.
type PaymentMethod string

const (
	// MethodMTN оплата через MTN Mobile Money.
	MethodMTN PaymentMethod = "MTN"
	// MethodAirtel оплата через Airtel Money.
	MethodAirtel PaymentMethod = "AIRTEL"
)

// Valid сообщает, входит ли метод в закрытый набор операторов.
func (m PaymentMethod) Valid() bool {
	return m == MethodMTN || m == MethodAirtel
}

// Currency единственная валюта платформы.
const Currency = "RWF"

// Payment одна попытка покупки. После достижения терминального статуса
// запись больше не изменяется.
type Payment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Amount        int           `json:"amount"`
	Currency      string        `json:"currency"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Phone         string        `json:"phone"`
	Status        PaymentStatus `json:"status"`
	PlanType      PlanType      `json:"subscription_type"`
	CreatedAt     time.Time     `json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	AccessCode    string        `json:"access_code,omitempty"`
}

// Terminal сообщает, достиг ли платёж конечного состояния.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentCompleted || p.Status == PaymentFailed || p.Status == PaymentCancelled
}
