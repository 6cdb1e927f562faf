package models

// PlanType тариф доступа к тесту.
type PlanType string

const (
	// PlanSingle разовая попытка.
	PlanSingle PlanType = "single"
	// PlanDaily доступ на сутки.
	PlanDaily PlanType = "daily"
	// PlanWeekly доступ на неделю.
	PlanWeekly PlanType = "weekly"
	// PlanMonthly доступ на месяц.
	PlanMonthly PlanType = "monthly"
)

// Plan элемент статического каталога тарифов. Длительность хранится
// в часах, цена в целых франках.
type Plan struct {
	Type          PlanType `json:"type"`
	Price         int      `json:"price"`
	Description   string   `json:"description"`
	DurationHours int      `json:"duration_hours"`
}
