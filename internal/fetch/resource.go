// Package fetch tracks the state of an asynchronously loaded value.
package fetch

import "sync"

// Token identifies one issued load. Only the most recently issued token may
// resolve a Resource.
type Token uint64

// State is a point-in-time copy of a Resource.
type State[T any] struct {
	Data    T
	Loaded  bool
	Loading bool
	Err     error
}

// Resource holds data, loading flag and last error for one remote value.
// Responses that arrive for an older token than the latest are dropped.
type Resource[T any] struct {
	mu      sync.RWMutex
	latest  Token
	data    T
	loaded  bool
	loading bool
	err     error
}

// Begin marks the resource as loading and returns the token the response
// must present to Resolve.
func (r *Resource[T]) Begin() Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest++
	r.loading = true
	return r.latest
}

// Resolve applies a response. It reports false and changes nothing when tok
// is stale. A non-nil err is recorded and leaves the prior data in place.
func (r *Resource[T]) Resolve(tok Token, data T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok != r.latest {
		return false
	}
	r.loading = false
	if err != nil {
		r.err = err
		return true
	}
	r.data = data
	r.loaded = true
	r.err = nil
	return true
}

// Set replaces the data without a round trip, for optimistic updates. Any
// load still in flight is superseded.
func (r *Resource[T]) Set(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest++
	r.data = data
	r.loaded = true
	r.loading = false
	r.err = nil
}

// Current reports whether tok is still the latest issued token.
func (r *Resource[T]) Current(tok Token) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tok == r.latest
}

// State returns a copy of the resource.
func (r *Resource[T]) State() State[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return State[T]{Data: r.data, Loaded: r.loaded, Loading: r.loading, Err: r.err}
}
