package edit

import "sync"

// Registry keeps at most one session per row.
type Registry[K comparable, T any] struct {
	mu       sync.Mutex
	sessions map[K]*Session[T]
}

func NewRegistry[K comparable, T any]() *Registry[K, T] {
	return &Registry[K, T]{sessions: map[K]*Session[T]{}}
}

// Open returns the row's session, creating it with newSession when none exists.
// The returned bool is true when the session was created by this call.
func (r *Registry[K, T]) Open(id K, newSession func() *Session[T]) (*Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := newSession()
	r.sessions[id] = s
	return s, true
}

func (r *Registry[K, T]) Get(id K) (*Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close forgets the row's session.
func (r *Registry[K, T]) Close(id K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Active reports whether the row has a session that is editing.
func (r *Registry[K, T]) Active(id K) bool {
	s, ok := r.Get(id)
	return ok && s.Editing()
}

func (r *Registry[K, T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
