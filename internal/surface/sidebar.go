package surface

import (
	"fmt"
	"sync"

	"job-board-go/internal/filter"
)

// Option is one checkbox of a facet section.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section is one facet group of the sidebar.
type Section struct {
	Dimension filter.Dimension `json:"dimension"`
	Title     string           `json:"title"`
	Options   []Option         `json:"options"`
}

var catalog = []Section{
	{filter.Location, "Location", []Option{
		{"bangalore", "Bangalore"}, {"delhi", "Delhi"}, {"mumbai", "Mumbai"}, {"hyderabad", "Hyderabad"},
		{"chennai", "Chennai"}, {"pune", "Pune"}, {"remote", "Remote"}, {"gurgaon", "Gurgaon"},
		{"noida", "Noida"}, {"kolkata", "Kolkata"},
	}},
	{filter.Experience, "Experience", []Option{
		{"0-1", "0 - 1 Years"}, {"1-2", "1 - 2 Years"}, {"2-3", "2 - 3 Years"}, {"3-5", "3 - 5 Years"},
		{"5-8", "5 - 8 Years"}, {"8-10", "8 - 10 Years"}, {"10+", "10+ Years"},
	}},
	{filter.Salary, "Salary", []Option{
		{"0-3", "₹0-3 LPA"}, {"3-6", "₹3-6 LPA"}, {"6-10", "₹6-10 LPA"}, {"10-15", "₹10-15 LPA"},
		{"15-20", "₹15-20 LPA"}, {"20-30", "₹20-30 LPA"}, {"30+", "₹30+ LPA"},
	}},
	{filter.Function, "Function", []Option{
		{"engineering", "Engineering"}, {"marketing", "Marketing"}, {"sales", "Sales"}, {"hr", "HR"},
		{"finance", "Finance"}, {"operations", "Operations"}, {"design", "Design"},
	}},
	{filter.Industry, "Industry", []Option{
		{"it", "IT"}, {"healthcare", "Healthcare"}, {"finance", "Finance"}, {"e-commerce", "E-commerce"},
		{"education", "Education"}, {"manufacturing", "Manufacturing"}, {"retail", "Retail"},
	}},
	{filter.JobType, "Job Type", []Option{
		{"full-time", "Full-time"}, {"part-time", "Part-time"}, {"contract", "Contract"},
		{"internship", "Internship"}, {"remote", "Remote"},
	}},
}

// Catalog returns the facet sections offered by the sidebar.
func Catalog() []Section {
	out := make([]Section, len(catalog))
	copy(out, catalog)
	return out
}

func section(d filter.Dimension) (Section, bool) {
	for _, s := range catalog {
		if s.Dimension == d {
			return s, true
		}
	}
	return Section{}, false
}

// Sidebar is the facet multi-select surface.
type Sidebar struct {
	onChange func(filter.Selections)

	mu         sync.Mutex
	selections filter.Selections
}

func NewSidebar(onChange func(filter.Selections)) *Sidebar {
	return &Sidebar{
		onChange:   onChange,
		selections: filter.Selections{},
	}
}

// Toggle selects value in section d, or deselects it when already set.
func (s *Sidebar) Toggle(d filter.Dimension, value string) error {
	if _, ok := section(d); !ok {
		return fmt.Errorf("dimension %q has no sidebar section", d)
	}

	s.mu.Lock()
	current := s.selections[d]
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	s.store(d, next)
	snapshot := s.cloneLocked()
	s.mu.Unlock()

	s.onChange(snapshot)
	return nil
}

// Remove deselects one value. Removing an unselected value is a no-op
// and does not notify.
func (s *Sidebar) Remove(d filter.Dimension, value string) {
	s.mu.Lock()
	current := s.selections[d]
	next := make([]string, 0, len(current))
	for _, v := range current {
		if v != value {
			next = append(next, v)
		}
	}
	if len(next) == len(current) {
		s.mu.Unlock()
		return
	}
	s.store(d, next)
	snapshot := s.cloneLocked()
	s.mu.Unlock()

	s.onChange(snapshot)
}

// ClearSection drops every selection of d.
func (s *Sidebar) ClearSection(d filter.Dimension) {
	s.mu.Lock()
	delete(s.selections, d)
	snapshot := s.cloneLocked()
	s.mu.Unlock()

	s.onChange(snapshot)
}

// Reset drops every selection.
func (s *Sidebar) Reset() {
	s.mu.Lock()
	s.selections = filter.Selections{}
	s.mu.Unlock()

	s.onChange(filter.Selections{})
}

// Selections returns a copy of the current selections.
func (s *Sidebar) Selections() filter.Selections {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cloneLocked()
}

// ActiveCount is the number of checked options over all sections.
func (s *Sidebar) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, values := range s.selections {
		n += len(values)
	}
	return n
}

func (s *Sidebar) store(d filter.Dimension, values []string) {
	if len(values) == 0 {
		delete(s.selections, d)
		return
	}
	s.selections[d] = values
}

func (s *Sidebar) cloneLocked() filter.Selections {
	out := make(filter.Selections, len(s.selections))
	for d, values := range s.selections {
		out[d] = append([]string(nil), values...)
	}
	return out
}
