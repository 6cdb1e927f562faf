// Package sessions реализует серверное хранилище сессий поверх Redis.
//
// Вместо глобального "текущего пользователя" каждая сессия живёт под
// идентификатором токена (jti) с ограниченным временем жизни. Удаление
// записи немедленно отзывает сессию, не дожидаясь истечения токена.
package sessions

import (
	"context"
	"fmt"
	"time"
)

// Record серверная запись одной сессии.
type Record struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache описывает методы кеша, нужные хранилищу сессий.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Store хранит сессии в кеше под ключом session:<jti>.
type Store struct {
	cache Cache
}

// New создаёт хранилище сессий.
func New(cache Cache) *Store {
	return &Store{cache: cache}
}

// Open сохраняет запись сессии с заданным временем жизни.
func (s *Store) Open(ctx context.Context, tokenID string, rec Record, ttl time.Duration) error {
	const op = "sessions.Open"
	if err := s.cache.Set(ctx, key(tokenID), rec, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get возвращает запись сессии и признак её существования.
func (s *Store) Get(ctx context.Context, tokenID string) (*Record, bool, error) {
	const op = "sessions.Get"
	var rec Record
	found, err := s.cache.Get(ctx, key(tokenID), &rec)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Close отзывает сессию.
func (s *Store) Close(ctx context.Context, tokenID string) error {
	const op = "sessions.Close"
	if err := s.cache.Invalidate(ctx, key(tokenID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(tokenID string) string {
	return "session:" + tokenID
}
