// Package settlement определяет порт внешнего подтверждения платежей.
//
// Реальный провайдер мобильных денег подтверждает платёж асинхронно,
// вебхуком или опросом. Пока интеграции нет, её место занимает
// SimulatedOracle: он отвечает через ограниченную случайную задержку
// с настраиваемой вероятностью успеха. Контракт для жизненного цикла
// одинаковый: один терминальный исход на каждый pending платёж.
package settlement

import (
	"context"
	"math/rand"
	"time"
)

// Outcome терминальный исход урегулирования.
type Outcome int

const (
	// OutcomeFailed провайдер отклонил платёж.
	OutcomeFailed Outcome = iota
	// OutcomeCompleted провайдер подтвердил платёж.
	OutcomeCompleted
)

// Oracle внешняя граница подтверждения платежей. Resolve блокируется
// до исхода или отмены контекста.
type Oracle interface {
	Resolve(ctx context.Context, paymentID string) (Outcome, error)
}

// SimulatedOracle эмулирует латентность и надёжность провайдера.
type SimulatedOracle struct {
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
	rng         *rand.Rand
}

// NewSimulated создаёт оракула с задержкой в [minDelay, maxDelay]
// и вероятностью успеха successRate из [0, 1].
func NewSimulated(minDelay, maxDelay time.Duration, successRate float64) *SimulatedOracle {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &SimulatedOracle{
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		successRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve ждёт случайную задержку и возвращает исход. Исход не зависит
// от paymentID, идентификатор нужен только реальным реализациям.
func (o *SimulatedOracle) Resolve(ctx context.Context, _ string) (Outcome, error) {
	delay := o.minDelay
	if spread := o.maxDelay - o.minDelay; spread > 0 {
		delay += time.Duration(o.rng.Int63n(int64(spread)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return OutcomeFailed, ctx.Err()
	case <-timer.C:
	}

	if o.rng.Float64() < o.successRate {
		return OutcomeCompleted, nil
	}
	return OutcomeFailed, nil
}
