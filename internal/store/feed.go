package store

import (
	"context"
	"sync"
)

// Feed broadcasts collection snapshots to any number of subscribers.  Each
// subscriber owns a buffered channel of size one: when a subscriber lags,
// the pending snapshot is replaced by the newest one, so receivers always
// converge on the latest state without ever blocking a publisher.  Both
// store backends embed a Feed per collection.
type Feed[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

// NewFeed returns an empty feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new receiver.  The returned channel closes when
// ctx is cancelled.  The caller should publish an initial snapshot right
// after subscribing if "current contents first" semantics are needed;
// the store backends do this.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish delivers a snapshot to every subscriber, replacing any snapshot
// a slow subscriber has not yet consumed.
func (f *Feed[T]) Publish(snapshot T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale pending snapshot and queue the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
