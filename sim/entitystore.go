package sim

import "github.com/lab1702/actionserver/zone"

// entityStore is the indexed collection of live entities for one zone.
// It is owned exclusively by the actor goroutine: all
// reads and writes happen on the tick's own goroutine, so no locking
// is needed here — concurrency with RPC callers is handled one layer
// up by WorldSimulation's command channel.
type entityStore struct {
	entities map[zone.EntityID]*zone.Entity
	order    []zone.EntityID // stable iteration order for deterministic snapshots
}

func newEntityStore() *entityStore {
	return &entityStore{entities: make(map[zone.EntityID]*zone.Entity)}
}

func (s *entityStore) Get(id zone.EntityID) (*zone.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

func (s *entityStore) Has(id zone.EntityID) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *entityStore) Put(e *zone.Entity) {
	if _, exists := s.entities[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.entities[e.ID] = e
}

func (s *entityStore) Remove(id zone.EntityID) {
	if _, ok := s.entities[id]; !ok {
		return
	}
	delete(s.entities, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All returns entities in stable insertion order. Callers must not
// mutate the returned slice's backing entities concurrently with
// Remove/Put (safe here because everything runs on the actor
// goroutine).
func (s *entityStore) All() []*zone.Entity {
	out := make([]*zone.Entity, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *entityStore) Count() int { return len(s.entities) }

// Filter returns entities matching pred, in stable order.
func (s *entityStore) Filter(pred func(*zone.Entity) bool) []*zone.Entity {
	out := make([]*zone.Entity, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.entities[id]; ok && pred(e) {
			out = append(out, e)
		}
	}
	return out
}
