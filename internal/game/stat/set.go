package stat

// Set is the modifier list owned by one participant.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	mods []Modifier
}

// NewSet creates an empty Set, optionally seeded with permanent modifiers.
func NewSet(initial ...Modifier) *Set {
	s := &Set{}
	for _, m := range initial {
		s.Add(m)
	}
	return s
}

// Add attaches m. A modifier whose ID is already present is ignored so the
// same handle can never be attached twice.
//
// Postcondition: Has(m.ID) is true.
func (s *Set) Add(m Modifier) {
	if s.Has(m.ID) {
		return
	}
	s.mods = append(s.mods, m)
}

// Remove detaches the modifier with the given handle.
//
// Postcondition: Has(id) is false; returns true iff a modifier was removed.
func (s *Set) Remove(id string) bool {
	for i, m := range s.mods {
		if m.ID == id {
			s.mods = append(s.mods[:i:i], s.mods[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether a modifier with the given handle is attached.
func (s *Set) Has(id string) bool {
	for _, m := range s.mods {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of attached modifiers.
func (s *Set) Len() int { return len(s.mods) }

// All returns a snapshot of every attached modifier in attachment order.
// Mutating the Set while ranging over the snapshot is safe.
func (s *Set) All() []Modifier {
	out := make([]Modifier, len(s.mods))
	copy(out, s.mods)
	return out
}

// For returns a snapshot of the modifiers targeting attr, in attachment order.
func (s *Set) For(attr Attribute) []Modifier {
	var out []Modifier
	for _, m := range s.mods {
		if m.Attribute == attr {
			out = append(out, m)
		}
	}
	return out
}
