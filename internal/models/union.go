package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Location is either free text ("Bangalore, India") or a structured
// city/state/country triple.
type Location struct {
	Text    string `json:"-"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Structured reports whether the location came as an object.
func (l Location) Structured() bool {
	return l.Text == "" && (l.City != "" || l.State != "" || l.Country != "")
}

func (l Location) IsZero() bool {
	return strings.TrimSpace(l.Text) == "" && !l.Structured()
}

// String renders the location for display.
func (l Location) String() string {
	if !l.Structured() {
		return l.Text
	}

	var parts []string
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// UnmarshalJSON accepts a string, an object or an array of strings, which
// is joined into text. Other shapes decode as an empty location.
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = Location{}

	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &l.Text)
	case '{':
		type plain Location
		var p plain
		if err := json.Unmarshal(data, &p); err == nil {
			*l = Location(p)
		}
	case '[':
		var parts []string
		if err := json.Unmarshal(data, &parts); err == nil {
			l.Text = strings.Join(nonEmpty(parts), ", ")
		}
	}
	return nil
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l Location) MarshalJSON() ([]byte, error) {
	if !l.Structured() {
		return json.Marshal(l.Text)
	}
	type plain Location
	return json.Marshal(plain(l))
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span is either free text ("2-5 years", "₹3-6 LPA") or a structured
// {min, max} pair. Bounds holds the numeric interval once resolved by
// Normalize; for salaries it is always in absolute currency units.
type Span struct {
	Text   string `json:"-"`
	Bounds Range  `json:"-"`
}

// Structured reports whether the span came as an object or a number.
func (s Span) Structured() bool {
	return s.Text == ""
}

func (s Span) String() string {
	if s.Text != "" {
		return s.Text
	}
	if s.Bounds.Min == s.Bounds.Max {
		return formatNumber(s.Bounds.Min)
	}
	return formatNumber(s.Bounds.Min) + "-" + formatNumber(s.Bounds.Max)
}

// UnmarshalJSON accepts a string, a {min, max} object or a number. Other
// shapes decode as an empty span.
func (s *Span) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Span{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &s.Text)
	case '{':
		var obj struct {
			Min json.Number `json:"min"`
			Max json.Number `json:"max"`
		}
		if err := json.Unmarshal(data, &obj); err == nil {
			s.Bounds.Min = numberOrZero(obj.Min)
			s.Bounds.Max = numberOrZero(obj.Max)
		}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err == nil {
			s.Bounds = Range{Min: n, Max: n}
		}
	}
	return nil
}

func (s Span) MarshalJSON() ([]byte, error) {
	if s.Text != "" {
		return json.Marshal(s.Text)
	}
	return json.Marshal(s.Bounds)
}

var (
	pairPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-|\s+to\s+)\s*(\d+(?:\.\d+)?)`)
	singlePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// resolve computes Bounds. Text is parsed and multiplied by scale;
// structured values with an empty max collapse onto min.
func (s Span) resolve(scale float64) Span {
	if s.Text == "" {
		if s.Bounds.Max == 0 {
			s.Bounds.Max = s.Bounds.Min
		}
		return s
	}

	s.Bounds = ParseRangeText(s.Text)
	s.Bounds.Min *= scale
	s.Bounds.Max *= scale
	return s
}

// ParseRangeText extracts "A-B", "A to B" or a single "N" from free text.
// Text without digits yields the zero range.
func ParseRangeText(text string) Range {
	if m := pairPattern.FindStringSubmatch(text); m != nil {
		return Range{Min: parseFloat(m[1]), Max: parseFloat(m[2])}
	}
	if m := singlePattern.FindStringSubmatch(text); m != nil {
		n := parseFloat(m[1])
		return Range{Min: n, Max: n}
	}
	return Range{}
}

func parseFloat(s string) float64 {
	n, _ := strconv.ParseFloat(s, 64)
	return n
}

func numberOrZero(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
