// Package metrics регистрирует счётчики жизненного цикла платежей
// для Prometheus. Значения отдаются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsInitiated количество созданных платежей.
	PaymentsInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theory_access_payments_initiated_total",
		Help: "Number of payments created in pending status.",
	})

	// PaymentsSettled количество урегулированных платежей по исходу.
	PaymentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theory_access_payments_settled_total",
		Help: "Number of payments that reached a terminal status.",
	}, []string{"outcome"})

	// CodesRedeemed количество успешных входов по коду доступа.
	CodesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theory_access_codes_redeemed_total",
		Help: "Number of access codes successfully redeemed.",
	})

	// CodeRedemptionsRejected количество отклонённых погашений.
	CodeRedemptionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theory_access_code_redemptions_rejected_total",
		Help: "Number of access code redemptions rejected as unknown, used or expired.",
	})
)
