package session

import "sync"

// Registry tracks which connection is viewing which document. It owns
// neither side: connections belong to the transport, documents to the
// store. State is process-local; reconnecting clients re-announce their
// document.
type Registry struct {
	mu      sync.RWMutex
	viewing map[string]int64
	members map[int64]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		viewing: make(map[string]int64),
		members: make(map[int64]map[string]struct{}),
	}
}

// Join records connID as viewing docID, replacing any prior membership.
// A connection views one document at a time.
func (r *Registry) Join(connID string, docID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remove(connID)
	r.viewing[connID] = docID
	if r.members[docID] == nil {
		r.members[docID] = make(map[string]struct{})
	}
	r.members[docID][connID] = struct{}{}
}

// Leave drops the connection's membership. Called on disconnect.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(connID)
}

func (r *Registry) remove(connID string) {
	docID, ok := r.viewing[connID]
	if !ok {
		return
	}
	delete(r.viewing, connID)
	delete(r.members[docID], connID)
	if len(r.members[docID]) == 0 {
		delete(r.members, docID)
	}
}

// MembersOf returns the connections viewing docID, excluding one
// connection (typically the edit's origin).
func (r *Registry) MembersOf(docID int64, excluding string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.members[docID]))
	for connID := range r.members[docID] {
		if connID != excluding {
			out = append(out, connID)
		}
	}
	return out
}
