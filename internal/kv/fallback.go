package kv

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Fallback writes through to a primary store and degrades to memory for any key
// whose write fails, so a broken disk or database never aborts a checkout.
type Fallback struct {
	primary Store
	mem     *Memory
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	degraded map[string]bool
}

func NewFallback(primary Store, logger *zap.SugaredLogger) *Fallback {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fallback{
		primary:  primary,
		mem:      NewMemory(),
		logger:   logger,
		degraded: make(map[string]bool),
	}
}

func (f *Fallback) isDegraded(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded[key]
}

func (f *Fallback) markDegraded(key string, on bool) {
	f.mu.Lock()
	if on {
		f.degraded[key] = true
	} else {
		delete(f.degraded, key)
	}
	f.mu.Unlock()
}

// Degraded reports whether any key currently lives only in memory.
func (f *Fallback) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.degraded) > 0
}

func (f *Fallback) Get(ctx context.Context, key string) ([]byte, error) {
	if f.isDegraded(key) {
		return f.mem.Get(ctx, key)
	}

	v, err := f.primary.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		f.logger.Warnw("storage read failed, using in-memory copy", "key", key, "err", err.Error())
		return f.mem.Get(ctx, key)
	}
	return v, err
}

func (f *Fallback) Set(ctx context.Context, key string, value []byte) error {
	if err := f.primary.Set(ctx, key, value); err != nil {
		f.logger.Warnw("storage unavailable, keeping value in memory only", "key", key, "err", err.Error())
		f.markDegraded(key, true)
		return f.mem.Set(ctx, key, value)
	}
	f.markDegraded(key, false)
	return f.mem.Delete(ctx, key)
}

func (f *Fallback) Delete(ctx context.Context, key string) error {
	_ = f.mem.Delete(ctx, key)
	if err := f.primary.Delete(ctx, key); err != nil {
		// Keep the key shadowed so a stale primary copy is never read back.
		f.logger.Warnw("storage delete failed, shadowing key in memory", "key", key, "err", err.Error())
		f.markDegraded(key, true)
		return nil
	}
	f.markDegraded(key, false)
	return nil
}
