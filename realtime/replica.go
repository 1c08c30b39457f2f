package realtime

import (
	"encoding/json"
	"sync"
)

type confirmed struct {
	version uint64
	data    json.RawMessage
}

// Replica is a client-side copy of the synced documents kept in two layers:
// a pending local value written optimistically, and the last confirmed remote value.
// Remote always wins: a confirmation newer than what is held replaces the
// confirmed value and discards any pending write for that document.
type Replica struct {
	mu        sync.RWMutex
	confirmed map[string]confirmed
	pending   map[string]json.RawMessage
}

func NewReplica() *Replica {
	return &Replica{
		confirmed: make(map[string]confirmed),
		pending:   make(map[string]json.RawMessage),
	}
}

// ApplyLocal records an optimistic write for doc id.
func (r *Replica) ApplyLocal(id string, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[id] = append(json.RawMessage(nil), data...)
}

// Confirm applies a remote message. Messages not newer than the held version are
// ignored and reported as false.
func (r *Replica) Confirm(m Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := m.ID()
	if cur, ok := r.confirmed[id]; ok && m.Version <= cur.version {
		return false
	}
	r.confirmed[id] = confirmed{version: m.Version, data: append(json.RawMessage(nil), m.Data...)}
	delete(r.pending, id)
	return true
}

// Reject drops a pending write after the server refused it.
func (r *Replica) Reject(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}

// View returns the pending value if one exists, otherwise the confirmed one.
func (r *Replica) View(id string) (json.RawMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.pending[id]; ok {
		return p, true
	}
	if c, ok := r.confirmed[id]; ok {
		return c.data, true
	}
	return nil, false
}

// Decode unmarshals View(id) into out.
func (r *Replica) Decode(id string, out any) (bool, error) {
	raw, ok := r.View(id)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (r *Replica) Pending(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pending[id]
	return ok
}

// Version is the confirmed version of id, 0 if unseen.
func (r *Replica) Version(id string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.confirmed[id].version
}
