package session

import "sync"

// Locker выдаёт мьютекс на каждую сессию. Записи удаляются, когда их никто не держит.
// Блокировки локальны для процесса.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock ждёт освобождения сессии и захватывает её.
func (l *Locker) Lock(id string) (unlock func()) {
	e := l.acquire(id)
	e.mu.Lock()
	return func() { l.release(id, e, true) }
}

// TryLock захватывает сессию, только если она свободна.
func (l *Locker) TryLock(id string) (unlock func(), ok bool) {
	e := l.acquire(id)
	if !e.mu.TryLock() {
		l.release(id, e, false)
		return nil, false
	}
	return func() { l.release(id, e, true) }, true
}

func (l *Locker) acquire(id string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(id string, e *lockEntry, locked bool) {
	if locked {
		e.mu.Unlock()
	}
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}
