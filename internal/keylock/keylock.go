// Package keylock provides per-key exclusive locks with a bounded wait.
//
// Every wallet mutation runs under the lock for that wallet's key, so balance
// reads and writes form a single critical section. Two-key operations always
// lock in ascending key order, which rules out deadlock between concurrent
// transfers touching the same pair of wallets in opposite directions.
package keylock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout indicates the lock could not be acquired within the bounded wait.
// The caller may safely retry the operation.
var ErrTimeout = errors.New("lock acquisition timed out")

// KeyLock hands out exclusive locks keyed by string. Semaphore entries are
// never evicted: the map grows with the number of distinct keys ever locked,
// one buffered channel per wallet, which is small next to the wallet rows
// themselves. An eviction sweep would need to prove no goroutine still holds
// a reference to the channel, and nothing at this scale pays for that.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
	wait  time.Duration
}

// New creates a KeyLock whose Acquire calls give up after maxWait.
func New(maxWait time.Duration) *KeyLock {
	return &KeyLock{
		locks: make(map[string]chan struct{}),
		wait:  maxWait,
	}
}

func (k *KeyLock) sem(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.locks[key] = ch
	}
	return ch
}

// Acquire takes the exclusive lock for key, waiting at most the configured
// bound. It returns a release function that must be called exactly once.
func (k *KeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	ch := k.sem(key)

	timer := time.NewTimer(k.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// AcquirePair takes the locks for two distinct keys in ascending key order and
// returns a release function that unlocks them in reverse order.
func (k *KeyLock) AcquirePair(ctx context.Context, a, b string) (func(), error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	releaseFirst, err := k.Acquire(ctx, first)
	if err != nil {
		return nil, err
	}
	releaseSecond, err := k.Acquire(ctx, second)
	if err != nil {
		releaseFirst()
		return nil, err
	}

	return func() {
		releaseSecond()
		releaseFirst()
	}, nil
}
