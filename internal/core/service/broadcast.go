package service

import "sync"

// latest fans snapshots out to subscribers. Each subscriber channel holds at
// most one value; a slow reader only ever sees the newest snapshot.
type latest[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	next   int
	closed bool
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{subs: make(map[int]chan T)}
}

// subscribe registers a reader primed with initial. The returned cancel
// func is idempotent. After close, subscribe returns a closed channel.
func (l *latest[T]) subscribe(initial T) (<-chan T, func()) {
	ch := make(chan T, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- initial
	id := l.next
	l.next++
	l.subs[id] = ch

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *latest[T]) publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (l *latest[T]) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
