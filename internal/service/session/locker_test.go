package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func TestLocker_TryLockWhileHeld(t *testing.T) {
	l := NewLocker()
	unlock := l.Lock("a")

	_, ok := l.TryLock("a")
	assert.False(t, ok, "held session must reject input")

	other, ok := l.TryLock("b")
	require.True(t, ok, "other sessions are independent")
	other()

	unlock()
	again, ok := l.TryLock("a")
	require.True(t, ok)
	again()
	assert.Equal(t, 0, l.size())
}

func TestLocker_SerializesSameSession(t *testing.T) {
	l := NewLocker()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s")
			defer unlock()
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, l.size())
}
