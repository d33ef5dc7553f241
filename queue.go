package termfx

import (
	"sync"
)

// queue is an unbounded FIFO. Consumers wait on the wake channel, which holds
// a token whenever the queue is non-empty
type queue[T any] struct {
	items []T
	mu    sync.Mutex
	wake  chan struct{}
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{
		wake: make(chan struct{}, 1),
	}
	return q
}

func (q *queue[T]) push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop removes the oldest item. The wake token is cleared when the queue
// becomes empty
func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var item T
	switch len(q.items) {
	case 0:
		return item, false
	case 1:
		item = q.items[0]
		q.items = make([]T, 0)
		select {
		case <-q.wake:
		default:
		}
	default:
		item = q.items[0]
		q.items = q.items[1:]
		// Keep the token armed for other readers
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
	return item, true
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wait returns a channel which receives when items may be available. Readers
// must pop after waking up: the token can be stale
func (q *queue[T]) wait() <-chan struct{} {
	return q.wake
}
