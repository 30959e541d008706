package ecs

// Each1 visits live entities holding an A component, in slot order.
func Each1[A any](w *World, sa *PtrComponentStore[A], fn func(EntityID, *A)) {
	if sa.Len() == 0 {
		return
	}
	w.entities.Each(func(id EntityID) bool {
		if a, ok := sa.data[id]; ok {
			fn(id, a)
		}
		return true
	})
}

// Each2 visits live entities holding both A and B, in slot order.
func Each2[A, B any](w *World, sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() == 0 || sb.Len() == 0 {
		return
	}
	w.entities.Each(func(id EntityID) bool {
		a, ok := sa.data[id]
		if !ok {
			return true
		}
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
		return true
	})
}

// Each3 visits live entities holding A, B and C, in slot order.
func Each3[A, B, C any](w *World, sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	if sa.Len() == 0 || sb.Len() == 0 || sc.Len() == 0 {
		return
	}
	w.entities.Each(func(id EntityID) bool {
		a, ok := sa.data[id]
		if !ok {
			return true
		}
		b, ok := sb.data[id]
		if !ok {
			return true
		}
		if c, ok := sc.data[id]; ok {
			fn(id, a, b, c)
		}
		return true
	})
}
