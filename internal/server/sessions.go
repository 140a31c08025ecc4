package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

// errSessionNotFound is returned for an unknown or ended session id.
var errSessionNotFound = errors.New("session not found")

// trackedSession is a lane.Session plus the bookkeeping the tools need.
// mu serializes requests against the same session.
type trackedSession struct {
	mu       sync.Mutex
	id       string
	session  *lane.Session
	strategy lane.Strategy
	seed     uint64
	runID    string
	last     *lane.Result
}

// remember stores res as the most recent result. Callers hold mu.
func (t *trackedSession) remember(res lane.Result) {
	t.last = &res
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*trackedSession)}
}

func (r *sessionRegistry) add(t *trackedSession) string {
	t.id = uuid.New().String()
	r.mu.Lock()
	r.sessions[t.id] = t
	r.mu.Unlock()
	return t.id
}

func (r *sessionRegistry) get(id string) (*trackedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errSessionNotFound, id)
	}
	return t, nil
}

func (r *sessionRegistry) remove(id string) (*trackedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errSessionNotFound, id)
	}
	delete(r.sessions, id)
	return t, nil
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
