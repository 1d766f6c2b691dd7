package notifications

// recentIDs remembers the last size ids in a ring.
type recentIDs struct {
	ring  []string
	next  int
	index map[string]struct{}
}

func newRecentIDs(size int) *recentIDs {
	return &recentIDs{
		ring:  make([]string, 0, size),
		index: make(map[string]struct{}, size),
	}
}

// add records id and reports whether it was new. Empty ids are never tracked.
func (r *recentIDs) add(id string) bool {
	if id == "" {
		return true
	}
	if _, ok := r.index[id]; ok {
		return false
	}

	if len(r.ring) < cap(r.ring) {
		r.ring = append(r.ring, id)
	} else {
		delete(r.index, r.ring[r.next])
		r.ring[r.next] = id
		r.next = (r.next + 1) % len(r.ring)
	}
	r.index[id] = struct{}{}
	return true
}
