package models

import "time"

// CodeIssuedEvent событие успешной оплаты, публикуемое в очередь
// уведомлений: владельцу номера нужно доставить выпущенный код.
type CodeIssuedEvent struct {
	PaymentID string    `json:"payment_id"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Code      string    `json:"code"`
	PlanType  PlanType  `json:"plan_type"`
	Amount    int       `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}
