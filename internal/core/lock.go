package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// RequestLock serializes request processing for one key. It is a
// semaphore of one, so acquisition can be abandoned when the request
// context expires.
type RequestLock struct {
	slot chan struct{}
}

func NewRequestLock() *RequestLock {
	return &RequestLock{slot: make(chan struct{}, 1)}
}

// LockWithContext acquires the lock, or reports false if ctx ends first.
func (l *RequestLock) LockWithContext(ctx context.Context) bool {
	select {
	case l.slot <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Unlock releases the lock. Releasing an unheld lock is a no-op.
func (l *RequestLock) Unlock() {
	select {
	case <-l.slot:
	default:
	}
}

var requestLocks sync.Map

// GetRequestLock returns the lock for a key, creating it on first use.
// Keys are channels for public traffic and nicks for private chats.
func GetRequestLock(key string) *RequestLock {
	if lock, ok := requestLocks.Load(key); ok {
		return lock.(*RequestLock)
	}
	actual, _ := requestLocks.LoadOrStore(key, NewRequestLock())
	return actual.(*RequestLock)
}

// WithRequestLock runs onSuccess while holding the lock for key. If the
// lock cannot be acquired before ctx ends, onTimeout runs instead.
func WithRequestLock(ctx context.Context, key string, operation string, onSuccess func(), onTimeout func()) {
	lock := GetRequestLock(key)

	var logger *zap.SugaredLogger
	if logCtx, ok := ctx.(interface{ GetLogger() *zap.SugaredLogger }); ok {
		logger = logCtx.GetLogger()
	} else {
		logger = GetLogger()
	}

	logger.Debugw("lock_acquiring", "key", key, "operation", operation)
	if !lock.LockWithContext(ctx) {
		logger.Warnw("lock_timeout", "key", key, "operation", operation)
		if onTimeout != nil {
			onTimeout()
		}
		return
	}
	logger.Debugw("lock_acquired", "key", key, "operation", operation)
	defer func() {
		logger.Debugw("lock_released", "key", key, "operation", operation)
		lock.Unlock()
	}()

	onSuccess()
}
