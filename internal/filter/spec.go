package filter

import (
	"fmt"
	"strings"
)

// Dimension names one filterable field.
type Dimension string

const (
	Keyword    Dimension = "keyword"
	Location   Dimension = "location"
	Experience Dimension = "experience"
	Salary     Dimension = "salary"
	Function   Dimension = "function"
	Industry   Dimension = "industry"
	FullStack  Dimension = "fullStack"
	JobType    Dimension = "jobType"
)

// Dimensions lists every dimension in pass order.
var Dimensions = []Dimension{Keyword, Location, Experience, Salary, Function, Industry, FullStack, JobType}

// ParseDimension validates a dimension name.
func ParseDimension(name string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown filter dimension %q", name)
}

// Spec maps dimensions to filter values. A missing key or a blank value
// leaves the dimension inactive.
type Spec map[Dimension]string

// Get returns the trimmed value of d.
func (s Spec) Get(d Dimension) string {
	return strings.TrimSpace(s[d])
}

func (s Spec) Active(d Dimension) bool {
	return s.Get(d) != ""
}

// ActiveCount returns how many dimensions are active.
func (s Spec) ActiveCount() int {
	n := 0
	for _, d := range Dimensions {
		if s.Active(d) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy with d set to value.
func (s Spec) With(d Dimension, value string) Spec {
	out := s.Clone()
	out[d] = value
	return out
}

// Without returns a copy with d inactive.
func (s Spec) Without(d Dimension) Spec {
	return s.With(d, "")
}

// Selections holds multi-select facet values per dimension.
type Selections map[Dimension][]string

// Flatten joins every non-empty selection with commas.
func (s Selections) Flatten() Spec {
	out := make(Spec, len(s))
	for d, values := range s {
		if len(values) == 0 {
			continue
		}
		out[d] = strings.Join(values, ",")
	}
	return out
}

// Merge combines the search bar spec with sidebar selections. Sidebar
// dimensions win only when they hold at least one selection.
func Merge(search Spec, sidebar Selections) Spec {
	out := search.Clone()
	for d, v := range sidebar.Flatten() {
		out[d] = v
	}
	return out
}

// alternatives splits a comma-joined value into its trimmed parts.
func alternatives(value string) []string {
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
