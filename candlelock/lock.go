// Package candlelock implements the per-location advisory file lock (spec
// §4.F) guarding a data directory against concurrent readers/writers across
// processes, via github.com/gofrs/flock — the direct Go analogue of the
// original's filelock.FileLock.
package candlelock

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockFileName = ".lock"

// Unlock releases a held lock. Callers are expected to defer it immediately
// after a successful Acquire, mirroring the original's context-manager
// scoping with Go's defer.
type Unlock func()

// Acquire blocks until it holds the exclusive lock for dir, creating dir if
// necessary, and returns an Unlock to release it.
func Acquire(dir string) (Unlock, error) {
	return AcquireContext(context.Background(), dir)
}

// AcquireContext is Acquire with cancellation: ctx.Done() aborts the wait.
func AcquireContext(ctx context.Context, dir string) (Unlock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(lockPath(dir))
	ok, err := fl.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ctx.Err()
	}
	return func() { _ = fl.Unlock() }, nil
}

// AcquireTimeout bounds the wait with a timeout, returning an error if the
// lock is not obtained in time.
func AcquireTimeout(dir string, timeout time.Duration) (Unlock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(lockPath(dir))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ok, err := fl.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return func() { _ = fl.Unlock() }, nil
}

func lockPath(dir string) string {
	return filepath.Join(dir, lockFileName)
}
