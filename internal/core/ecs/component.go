package ecs

// Removable is implemented by all component stores so a StoreSet can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a generic typed map store for ECS components, keyed
// by the full handle so a recycled slot never sees the previous occupant's
// data.
type PtrComponentStore[T any] struct {
	data map[EntityID]*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits components in map order. Use Each1 for slot order.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// StoreSet tracks the component stores attached to a World.
type StoreSet struct {
	stores []Removable
}

func (ss *StoreSet) Register(store Removable) {
	ss.stores = append(ss.stores, store)
}

func (ss *StoreSet) Len() int { return len(ss.stores) }

// RemoveAll clears the given entity from every registered store.
func (ss *StoreSet) RemoveAll(id EntityID) {
	for _, s := range ss.stores {
		s.Remove(id)
	}
}
