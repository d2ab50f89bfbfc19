package candlelock

import (
	"context"
	"testing"
	"time"
)

func TestAcquireAndUnlock(t *testing.T) {
	dir := t.TempDir()

	unlock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	unlock()

	unlock2, err := Acquire(dir)
	if err != nil {
		t.Fatalf("re-acquire after unlock: %v", err)
	}
	unlock2()
}

func TestAcquireTimeoutWhenHeld(t *testing.T) {
	dir := t.TempDir()

	unlock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer unlock()

	_, err = AcquireTimeout(dir, 100*time.Millisecond)
	if err == nil {
		t.Fatalf("expected timeout error while lock is held")
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	dir := t.TempDir()

	unlock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = AcquireContext(ctx, dir)
	if err == nil {
		t.Fatalf("expected context deadline error while lock is held")
	}
}
