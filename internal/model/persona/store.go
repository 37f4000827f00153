package persona

// Store looks personas up for handlers and the chat service.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore is a read-only Store built once at startup.
type MemoryStore struct {
	order []string
	byID  map[string]Persona
}

// NewMemoryStore indexes items by ID. A later persona with a repeated ID replaces
// the earlier one but keeps its position.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]Persona, len(items))}
	for _, p := range items {
		if _, seen := s.byID[p.ID]; !seen {
			s.order = append(s.order, p.ID)
		}
		s.byID[p.ID] = p
	}
	return s
}

// List returns the personas in registration order.
func (s *MemoryStore) List() []Persona {
	out := make([]Persona, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	p, ok := s.byID[id]
	return p, ok
}
