package queue

import "sync"

// sessionLocks serializes jobs of the same session across workers. Entries
// are dropped once no worker holds or waits for them.
type sessionLocks struct {
	mu   sync.Mutex
	byID map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{byID: make(map[string]*sessionLock)}
}

// lock blocks until sessionID is free and returns the matching unlock.
func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	sl, ok := l.byID[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.byID[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.byID, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
