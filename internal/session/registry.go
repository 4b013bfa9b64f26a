package session

import (
	"sort"
	"sync"
)

// Registry is the process-wide session store. Its lock guards only the map; per-session state is
// guarded by each session's own lock, always acquired after the registry lock has been released.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	retired  map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), retired: make(map[string]struct{})}
}

// Create publishes a session. Ids are never reused, including ids of deleted sessions.
func (r *Registry) Create(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID]; exists {
		return ErrDuplicateID
	}
	if _, used := r.retired[s.ID]; used {
		return ErrDuplicateID
	}
	r.sessions[s.ID] = s
	return nil
}

// Get returns a snapshot of one session.
func (r *Registry) Get(id string) (View, error) {
	var v View
	err := r.Update(id, func(s *Session) error {
		v = s.Snapshot()
		return nil
	})
	return v, err
}

// Update runs fn with exclusive access to the session. A session removed while fn was waiting for the
// lock is reported as not found.
func (r *Registry) Update(id string, fn func(*Session) error) error {
	s := r.lookup(id)
	if s == nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return ErrNotFound
	}
	return fn(s)
}

// Delete removes a session and returns its final snapshot.
func (r *Registry) Delete(id string) (View, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		r.retired[id] = struct{}{}
	}
	r.mu.Unlock()
	if !ok {
		return View{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	return s.Snapshot(), nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) List() []View {
	return r.Filter(nil)
}

func (r *Registry) NeedingOpponent() []View {
	return r.Filter(View.NeedsOpponent)
}

func (r *Registry) InProgress() []View {
	return r.Filter(func(v View) bool { return v.Result == InProgress })
}

func (r *Registry) Won() []View {
	return r.Filter(func(v View) bool { return v.Result == WhiteWin || v.Result == BlackWin })
}

func (r *Registry) Drawn() []View {
	return r.Filter(func(v View) bool { return v.Result == Draw })
}

// NeedingOpponentAt pages through NeedingOpponent one entry at a time.
func (r *Registry) NeedingOpponentAt(idx int) (View, error) {
	list := r.NeedingOpponent()
	if idx < 0 || idx >= len(list) {
		return View{}, ErrNotFound
	}
	return list[idx], nil
}

// Filter snapshots every session matching keep (all when nil), ordered by creation time then id.
func (r *Registry) Filter(keep func(View) bool) []View {
	r.mu.RLock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	out := make([]View, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		if s.removed {
			s.mu.Unlock()
			continue
		}
		v := s.Snapshot()
		s.mu.Unlock()
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Registry) lookup(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}
