// Package audit keeps a bounded, write-mostly trail of payment verification attempts.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rayalaseema/internal/kv"

	"go.uber.org/zap"
)

const (
	DefaultKey  = "rayalaseema_payment_attempts"
	MaxAttempts = 50
)

type Attempt struct {
	PaymentID string    `json:"paymentId"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// Log holds at most MaxAttempts entries, evicting the oldest first.
type Log struct {
	mu     sync.Mutex
	store  kv.Store
	key    string
	now    func() time.Time
	logger *zap.SugaredLogger
}

type Option func(*Log)

func WithKey(key string) Option {
	return func(l *Log) { l.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(l *Log) { l.logger = logger }
}

func NewLog(store kv.Store, opts ...Option) *Log {
	l := &Log{
		store:  store,
		key:    DefaultKey,
		now:    time.Now,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) load(ctx context.Context) ([]Attempt, error) {
	raw, err := l.store.Get(ctx, l.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var attempts []Attempt
	if err := json.Unmarshal(raw, &attempts); err != nil {
		l.logger.Warnw("discarding unreadable attempt log", "key", l.key, "err", err.Error())
		return nil, nil
	}
	return attempts, nil
}

func (l *Log) Record(ctx context.Context, paymentID string, success bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempts, err := l.load(ctx)
	if err != nil {
		return fmt.Errorf("load attempt log: %w", err)
	}

	attempts = append(attempts, Attempt{
		PaymentID: paymentID,
		Success:   success,
		Timestamp: l.now().UTC(),
	})
	if over := len(attempts) - MaxAttempts; over > 0 {
		attempts = attempts[over:]
	}

	raw, err := json.Marshal(attempts)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, l.key, raw); err != nil {
		return fmt.Errorf("save attempt log: %w", err)
	}
	return nil
}

// All returns the whole log, oldest first.
func (l *Log) All(ctx context.Context) ([]Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempts, err := l.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempt log: %w", err)
	}
	return attempts, nil
}
