package flight

import (
	"errors"
	"sync"
	"time"
)

// ErrPanicked is returned to callers that joined work which panicked.
var ErrPanicked = errors.New("flight: work panicked")

// Group coalesces concurrent work for the same key and keeps successful
// results until their deadline passes. Failed work is never remembered.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]entry[V]
	pending  map[K]*job[V]

	// ttl <= 0 keeps results forever.
	ttl time.Duration
	now func() time.Time
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => infinite
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewGroup[K comparable, V any](ttl time.Duration) *Group[K, V] {
	return &Group[K, V]{
		finished: make(map[K]entry[V]),
		pending:  make(map[K]*job[V]),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Do returns the remembered result for k, joins a call already running for
// k, or runs work. replayed is true when the caller did not run work itself.
// If work panics, the panic propagates to the caller that ran it, joined
// callers get ErrPanicked and the key is released.
func (g *Group[K, V]) Do(k K, work func() (V, error)) (v V, replayed bool, err error) {
	g.mu.Lock()

	if e, ok := g.finished[k]; ok {
		if e.deadline.IsZero() || g.now().Before(e.deadline) {
			g.mu.Unlock()
			return e.val, true, nil
		}
		delete(g.finished, k)
	}

	if pending, ok := g.pending[k]; ok {
		g.mu.Unlock()
		<-pending.done
		return pending.val, true, pending.err
	}

	j := &job[V]{done: make(chan struct{})}
	g.pending[k] = j
	g.mu.Unlock()

	returned := false
	defer func() {
		g.mu.Lock()
		switch {
		case !returned:
			j.err = ErrPanicked
		case j.err == nil:
			g.store(k, j.val)
		}
		close(j.done)
		delete(g.pending, k)
		g.mu.Unlock()
	}()

	j.val, j.err = work()
	returned = true
	return j.val, false, j.err
}

// Forget drops the remembered result for k.
func (g *Group[K, V]) Forget(k K) {
	g.mu.Lock()
	delete(g.finished, k)
	g.mu.Unlock()
}

// Len reports how many results are remembered, expired ones included until
// the next store sweeps them.
func (g *Group[K, V]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.finished)
}

// store must be called with g.mu held.
func (g *Group[K, V]) store(k K, val V) {
	now := g.now()
	for key, e := range g.finished {
		if !e.deadline.IsZero() && now.After(e.deadline) {
			delete(g.finished, key)
		}
	}

	e := entry[V]{val: val}
	if g.ttl > 0 {
		e.deadline = now.Add(g.ttl)
	}
	g.finished[k] = e
}
