package crawler

import "sync"

// VisitSet tracks which normalized URLs have been claimed for fetching and
// enforces the global page cap. It is the only state shared between workers.
type VisitSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	limit int
}

// NewVisitSet creates a VisitSet that admits at most limit URLs.
func NewVisitSet(limit int) *VisitSet {
	return &VisitSet{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// Claim atomically marks url as visited. It returns false when the URL was
// already claimed or the page cap is reached, in which case the caller must
// not fetch it. The duplicate check, the cap check, and the insert happen in
// one critical section so two workers racing on the same URL cannot both
// proceed.
func (s *VisitSet) Claim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; ok {
		return false
	}
	if len(s.seen) >= s.limit {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains reports whether url has been claimed. It is an advisory check
// used to keep already-visited links out of the frontier; Claim remains the
// authoritative gate.
func (s *VisitSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[url]
	return ok
}

// Len returns the number of claimed URLs.
func (s *VisitSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Full reports whether the page cap is reached.
func (s *VisitSet) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen) >= s.limit
}
