// Package models содержит доменные структуры платформы: пользователей,
// платежи, коды доступа и сессии тестов. Структуры используются
// в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет владельца номера телефона, покупающего доступ к тесту.
// Создаётся при первой оплате или первом входе по коду с неизвестным номером.
type User struct {
	ID        string     `json:"id"`
	Phone     string     `json:"phone"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	// SubscriptionType и SubscriptionExpiry выставляются только парой:
	// активная подписка всегда имеет и тип, и дату окончания.
	SubscriptionType   PlanType   `json:"subscription_type,omitempty"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
}

// Admin представляет служебную учётную запись для просмотра платежей.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
