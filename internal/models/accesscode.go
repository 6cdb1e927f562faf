package models

import "time"

// AccessCode одноразовый код доступа к тесту. Выпускается при успешном
// платеже, действует до ExpiresAt и гасится при первом входе.
type AccessCode struct {
	Code      string     `json:"code"`
	UserID    string     `json:"user_id"`
	PlanType  PlanType   `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// ValidAt проверяет код на момент t: не использован и срок не истёк.
func (c *AccessCode) ValidAt(t time.Time) bool {
	return !c.IsUsed && t.Before(c.ExpiresAt)
}
