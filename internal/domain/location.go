package domain

// LocationSet is the whitelist of accepted location names. Built once at startup and
// never mutated afterwards, so concurrent reads need no locking.
type LocationSet struct{ names map[string]struct{} }

func NewLocationSet(names []string) LocationSet {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return LocationSet{names: m}
}

func (s LocationSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s LocationSet) Len() int { return len(s.names) }
