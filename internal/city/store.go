package city

import "sync"

// Store is the insertion-ordered set of tracked cities. A single mutex guards
// the slice; every operation is a linear scan over a handful of entries.
type Store struct {
	mu     sync.Mutex
	cities []City
}

func NewStore() *Store {
	return &Store{}
}

// Add appends c unless a city with the same identity is already tracked.
// It reports whether the store changed.
func (s *Store) Add(c City) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(c) >= 0 {
		return false
	}
	s.cities = append(s.cities, c)
	return true
}

// Remove drops every entry matching the title-cased name and the country code
// as given, and returns the removed entries.
func (s *Store) Remove(name, countryCode string) []City {
	name = TitleCase(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]City, 0, len(s.cities))
	var removed []City
	for _, c := range s.cities {
		if c.Name == name && c.CountryCode == countryCode {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	s.cities = kept
	return removed
}

func (s *Store) Contains(c City) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(c) >= 0
}

// List returns a copy in insertion order.
func (s *Store) List() []City {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]City, len(s.cities))
	copy(out, s.cities)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cities)
}

func (s *Store) indexOf(c City) int {
	for i, existing := range s.cities {
		if existing.SameAs(c) {
			return i
		}
	}
	return -1
}
