// File path: internal/api/sessions.go
package api

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/rofenac/fo76-ml-db/internal/engine"
)

// sessionRegistry maps opaque ids to live sessions. An empty id on resolve
// creates a fresh session; a non-empty id must already exist so clients
// cannot silently lose history to a typo.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*engine.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*engine.Session)}
}

func (r *sessionRegistry) resolve(id string) (string, *engine.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
		session := engine.NewSession()
		r.sessions[id] = session
		return id, session, nil
	}
	session, ok := r.sessions[id]
	if !ok {
		return "", nil, errors.New("unknown session")
	}
	return id, session, nil
}

func (r *sessionRegistry) clear(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false
	}
	session.Clear()
	return true
}
