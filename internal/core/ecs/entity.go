package ecs

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on remove to invalidate stale refs.
// Generations start at 1, so the zero EntityID is never issued.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("EntityID(%d:%d)", id.Index(), id.Generation())
}

// MaxEntities is the largest capacity SetMax accepts.
const MaxEntities = 1<<31 - 1

type slot struct {
	generation uint32
	live       bool
}

// EntityRegistry hands out entity handles from a fixed-capacity pool of
// slots and keeps a name and tag per live slot.
//
// Storage is append-only: a slot index never moves once touched, so handles
// stay valid across SetMax. Free slots are reused in FIFO order.
//
// Not safe for concurrent use. Callers that share a registry across
// goroutines must serialize access themselves.
type EntityRegistry struct {
	slots      []slot
	names      []string
	tags       []string
	nameHashes []uint64
	tagHashes  []uint64
	free       freeList
	max        int
	count      int
}

func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{}
}

// Max returns the configured capacity.
func (r *EntityRegistry) Max() int { return r.max }

// N returns the number of live entities.
func (r *EntityRegistry) N() int { return r.count }

// SetMax sets the maximum number of simultaneously live entities and
// reserves storage for that many slots. Fails with ErrCapacity when n is
// negative, too large, or below the current live count.
func (r *EntityRegistry) SetMax(n int) error {
	switch {
	case n < 0 || n > MaxEntities:
		return fmt.Errorf("%w: %d", ErrCapacity, n)
	case n < r.count:
		return fmt.Errorf("%w: %d is below live count %d", ErrCapacity, n, r.count)
	}
	if extra := n - len(r.slots); extra > 0 {
		r.slots = slices.Grow(r.slots, extra)
		r.names = slices.Grow(r.names, extra)
		r.tags = slices.Grow(r.tags, extra)
		r.nameHashes = slices.Grow(r.nameHashes, extra)
		r.tagHashes = slices.Grow(r.tagHashes, extra)
		r.free.Reserve(n)
	}
	r.max = n
	return nil
}

// Add allocates a slot and returns its handle. Freed slots are reused
// oldest first; untouched storage is used only when none are free.
func (r *EntityRegistry) Add() (EntityID, error) {
	if r.count >= r.max {
		return 0, fmt.Errorf("%w: max %d", ErrOutOfCapacity, r.max)
	}
	idx, ok := r.free.Pop()
	if !ok {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{generation: 1})
		r.names = append(r.names, "")
		r.tags = append(r.tags, "")
		r.nameHashes = append(r.nameHashes, 0)
		r.tagHashes = append(r.tagHashes, 0)
	}
	s := &r.slots[idx]
	s.live = true
	r.clearLabels(idx)
	r.count++
	return NewEntityID(idx, s.generation), nil
}

// Remove releases the slot behind id. The handle, and every copy of it, is
// invalid afterwards.
func (r *EntityRegistry) Remove(id EntityID) error {
	if err := r.Validate(id); err != nil {
		return err
	}
	idx := id.Index()
	s := &r.slots[idx]
	s.live = false
	s.generation = nextGeneration(s.generation)
	r.clearLabels(idx)
	r.free.Push(idx)
	r.count--
	return nil
}

// Clear removes every live entity. Slots are queued for reuse in ascending
// index order.
func (r *EntityRegistry) Clear() {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.live {
			continue
		}
		s.live = false
		s.generation = nextGeneration(s.generation)
		r.clearLabels(uint32(i))
		r.free.Push(uint32(i))
	}
	r.count = 0
}

// Alive reports whether id refers to a live entity.
func (r *EntityRegistry) Alive(id EntityID) bool {
	return r.Validate(id) == nil
}

// Validate returns nil for a live handle, ErrStaleHandle for a handle whose
// slot was freed or recycled since it was issued, and ErrInvalidHandle for
// anything else.
func (r *EntityRegistry) Validate(id EntityID) error {
	idx := id.Index()
	if id.Generation() == 0 || int(idx) >= len(r.slots) {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, id)
	}
	s := r.slots[idx]
	if s.generation != id.Generation() {
		return fmt.Errorf("%w: %s", ErrStaleHandle, id)
	}
	if !s.live {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, id)
	}
	return nil
}

// SetName associates s with id, replacing any previous name.
func (r *EntityRegistry) SetName(id EntityID, s string) error {
	if err := r.Validate(id); err != nil {
		return err
	}
	r.names[id.Index()] = s
	r.nameHashes[id.Index()] = Hash(s)
	return nil
}

// Name returns the name of id, or "" if none was set.
func (r *EntityRegistry) Name(id EntityID) (string, error) {
	if err := r.Validate(id); err != nil {
		return "", err
	}
	return r.names[id.Index()], nil
}

// NameHash returns Hash(Name(id)).
func (r *EntityRegistry) NameHash(id EntityID) (uint64, error) {
	if err := r.Validate(id); err != nil {
		return 0, err
	}
	return r.nameHashes[id.Index()], nil
}

func (r *EntityRegistry) SetTag(id EntityID, s string) error {
	if err := r.Validate(id); err != nil {
		return err
	}
	r.tags[id.Index()] = s
	r.tagHashes[id.Index()] = Hash(s)
	return nil
}

func (r *EntityRegistry) Tag(id EntityID) (string, error) {
	if err := r.Validate(id); err != nil {
		return "", err
	}
	return r.tags[id.Index()], nil
}

func (r *EntityRegistry) TagHash(id EntityID) (uint64, error) {
	if err := r.Validate(id); err != nil {
		return 0, err
	}
	return r.tagHashes[id.Index()], nil
}

// Each calls fn for every live entity in ascending slot order until fn
// returns false.
func (r *EntityRegistry) Each(fn func(EntityID) bool) {
	for i, s := range r.slots {
		if s.live && !fn(NewEntityID(uint32(i), s.generation)) {
			return
		}
	}
}

// ByName returns the live entities named exactly s, in slot order.
func (r *EntityRegistry) ByName(s string) []EntityID {
	return r.matching(r.nameHashes, Hash(s), r.names, &s)
}

// ByNameHash matches on the hash alone, like a script holding only the
// precomputed hash would.
func (r *EntityRegistry) ByNameHash(h uint64) []EntityID {
	return r.matching(r.nameHashes, h, nil, nil)
}

// ByTag returns the live entities tagged exactly s, in slot order.
func (r *EntityRegistry) ByTag(s string) []EntityID {
	return r.matching(r.tagHashes, Hash(s), r.tags, &s)
}

func (r *EntityRegistry) ByTagHash(h uint64) []EntityID {
	return r.matching(r.tagHashes, h, nil, nil)
}

func (r *EntityRegistry) matching(hashes []uint64, h uint64, labels []string, label *string) []EntityID {
	var ret []EntityID
	for i, s := range r.slots {
		if !s.live || hashes[i] != h {
			continue
		}
		if label != nil && labels[i] != *label {
			continue
		}
		ret = append(ret, NewEntityID(uint32(i), s.generation))
	}
	return ret
}

func (r *EntityRegistry) clearLabels(idx uint32) {
	r.names[idx] = ""
	r.tags[idx] = ""
	r.nameHashes[idx] = 0
	r.tagHashes[idx] = 0
}

// Hash is the label hash used for names and tags. The empty label hashes
// to 0.
func Hash(s string) uint64 {
	if s == "" {
		return 0
	}
	return xxhash.Sum64String(s)
}

func nextGeneration(g uint32) uint32 {
	if g++; g == 0 {
		g = 1
	}
	return g
}
