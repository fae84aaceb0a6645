package session

import "sync"

// ActorMutex serializes event handling per actor. The state machine is
// not safe under concurrent mutation of one actor's record, and the
// transport gives no ordering guarantee across HTTP requests.
type ActorMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewActorMutex() *ActorMutex {
	return &ActorMutex{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the actor's mutex and returns its unlock function.
func (a *ActorMutex) Lock(actorID int64) func() {
	a.mu.Lock()
	m, ok := a.locks[actorID]
	if !ok {
		m = &sync.Mutex{}
		a.locks[actorID] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}
