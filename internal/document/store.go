package document

import "sync"

// document is the authoritative mutable state. It never leaves the store;
// only snapshots and ids are passed around. Each document has its own
// mutex so edits to unrelated documents never block each other.
type document struct {
	mu       sync.Mutex
	id       int64
	name     string
	content  string
	version  uint64
	owner    string
	language string
	log      []SequencedOp
}

// Store holds every live document in memory. Documents are not durable
// across restarts.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]*document
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		docs:   make(map[int64]*document),
	}
}

// Create allocates a fresh id and stores the document at version 0.
// Ids are monotonic and never reused.
func (s *Store) Create(name, content, owner, language string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.docs[id] = &document{
		id:       id,
		name:     name,
		content:  content,
		owner:    owner,
		language: language,
	}
	return id
}

// Get returns a read-only snapshot of the document.
func (s *Store) Get(id int64) (Document, error) {
	s.mu.RLock()
	d, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return Document{
		ID:       d.id,
		Name:     d.name,
		Content:  d.content,
		Version:  d.version,
		Owner:    d.owner,
		Language: d.language,
	}, nil
}

// List returns summaries of every document, ordered by id.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.docs))
	for id := int64(1); id < s.nextID; id++ {
		if d, ok := s.docs[id]; ok {
			out = append(out, Summary{ID: d.id, Name: d.name, Owner: d.owner})
		}
	}
	return out
}

// lookup hands the live document to the sequencer. Callers must hold
// d.mu for the whole read-modify-write.
func (s *Store) lookup(id int64) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	return d, ok
}
