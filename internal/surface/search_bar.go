package surface

import (
	"sync"
	"time"

	"job-board-go/internal/filter"
)

// SearchFunc receives the spec a surface wants applied.
type SearchFunc func(spec filter.Spec)

// SearchBar is the top-nav search surface. Free-text dimensions are
// debounced; dropdown dimensions apply immediately.
type SearchBar struct {
	onSearch  SearchFunc
	debouncer *Debouncer

	mu    sync.Mutex
	draft filter.Spec
}

// NewSearchBar creates a search bar that reports to onSearch.
func NewSearchBar(onSearch SearchFunc, delay time.Duration) *SearchBar {
	return &SearchBar{
		onSearch:  onSearch,
		debouncer: NewDebouncer(delay),
		draft:     filter.Spec{},
	}
}

// IsFreeText reports whether edits to d are debounced.
func IsFreeText(d filter.Dimension) bool {
	return d == filter.Keyword || d == filter.Location
}

// Edit updates one dimension of the draft.
func (s *SearchBar) Edit(d filter.Dimension, value string) {
	draft := s.set(d, value)

	if IsFreeText(d) {
		s.debouncer.Trigger(func() { s.onSearch(s.Draft()) })
		return
	}

	s.debouncer.Cancel()
	s.onSearch(draft)
}

// Submit applies the draft now, dropping any pending debounced call.
func (s *SearchBar) Submit() {
	s.debouncer.Cancel()
	s.onSearch(s.Draft())
}

// Remove clears one dimension and applies immediately.
func (s *SearchBar) Remove(d filter.Dimension) {
	draft := s.set(d, "")
	s.debouncer.Cancel()
	s.onSearch(draft)
}

// Clear empties the draft and applies immediately.
func (s *SearchBar) Clear() {
	s.mu.Lock()
	s.draft = filter.Spec{}
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.onSearch(filter.Spec{})
}

// Sync replaces the draft without applying it.
func (s *SearchBar) Sync(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = spec.Clone()
}

// Draft returns a copy of the current draft.
func (s *SearchBar) Draft() filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft.Clone()
}

func (s *SearchBar) ActiveCount() int {
	return s.Draft().ActiveCount()
}

// Pending reports whether a debounced search is waiting to fire.
func (s *SearchBar) Pending() bool {
	return s.debouncer.Pending()
}

// Close stops the debouncer.
func (s *SearchBar) Close() {
	s.debouncer.Stop()
}

func (s *SearchBar) set(d filter.Dimension, value string) filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = s.draft.With(d, value)
	return s.draft.Clone()
}
