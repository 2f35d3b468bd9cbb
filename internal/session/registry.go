// Package session keeps the transient binding between a live connection and
// the room identity it joined with. Entries live only as long as the connection.
package session

import "sync"

type Session struct {
	RoomID   string
	UserName string
	UserID   string
}

// Registry is a process-scoped connection id -> Session map, safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Set binds connectionID to s, replacing any previous binding.
func (r *Registry) Set(connectionID string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connectionID] = s
}

func (r *Registry) Get(connectionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connectionID]
	return s, ok
}

func (r *Registry) Delete(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connectionID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// InRoom counts the sessions bound to roomID.
func (r *Registry) InRoom(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		if s.RoomID == roomID {
			n++
		}
	}
	return n
}
