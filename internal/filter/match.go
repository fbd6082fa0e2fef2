package filter

import (
	"strconv"
	"strings"

	"job-board-go/internal/models"
)

// matcher reports whether job satisfies one non-empty filter value.
type matcher func(job models.Job, value string) bool

type pass struct {
	dim   Dimension
	match matcher
	// multi means comma-joined values are alternatives.
	multi bool
}

// passes run in this order. Every dimension except keyword and fullStack
// treats a comma-joined value as alternatives: "IT,Finance" keeps jobs in
// either industry. Keyword and fullStack match the value as one token.
var passes = []pass{
	{Keyword, matchKeyword, false},
	{Location, matchLocation, true},
	{Experience, matchExperience, true},
	{Salary, matchSalary, true},
	{Function, matchExact(func(j models.Job) string { return j.Function }), true},
	{Industry, matchExact(func(j models.Job) string { return j.Industry }), true},
	{FullStack, matchFullStack, false},
	{JobType, matchExact(func(j models.Job) string { return j.JobType }), true},
}

// Apply returns the jobs matching every active dimension of spec, in
// their original order. The input slice is never modified.
func Apply(jobs []models.Job, spec Spec) []models.Job {
	filtered := jobs
	for _, p := range passes {
		value := spec.Get(p.dim)
		if value == "" {
			continue
		}
		filtered = narrow(filtered, p, value)
	}

	out := make([]models.Job, len(filtered))
	copy(out, filtered)
	return out
}

func narrow(jobs []models.Job, p pass, value string) []models.Job {
	options := []string{value}
	if p.multi {
		options = alternatives(value)
		if len(options) == 0 {
			return jobs
		}
	}

	var kept []models.Job
	for _, job := range jobs {
		for _, opt := range options {
			if p.match(job, opt) {
				kept = append(kept, job)
				break
			}
		}
	}
	return kept
}

func matchKeyword(job models.Job, value string) bool {
	keyword := strings.ToLower(value)

	fields := []string{job.Title, job.Company, job.Description, strings.Join(job.Skills, " "), job.Industry, job.Function}
	var parts []string
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}

	return strings.Contains(strings.ToLower(strings.Join(parts, " ")), keyword)
}

func matchLocation(job models.Job, value string) bool {
	needle := strings.ToLower(value)
	loc := job.Location

	if loc.Structured() {
		for _, part := range []string{loc.City, loc.State, loc.Country} {
			if strings.Contains(strings.ToLower(part), needle) {
				return true
			}
		}
		return false
	}

	return strings.Contains(strings.ToLower(loc.Text), needle)
}

func matchExperience(job models.Job, value string) bool {
	rng, ok := parseBand(value, "years", "year", "yrs", "yr")
	if !ok {
		return true
	}
	return rng.contains(job.Experience.Bounds)
}

func matchSalary(job models.Job, value string) bool {
	rng, ok := parseBand(value, "₹", "rs.", "rs", "lpa")
	if !ok {
		return true
	}

	lpa := models.Range{
		Min: job.Salary.Bounds.Min / models.LakhUnits,
		Max: job.Salary.Bounds.Max / models.LakhUnits,
	}
	return rng.contains(lpa)
}

func matchExact(field func(models.Job) string) matcher {
	return func(job models.Job, value string) bool {
		return strings.EqualFold(strings.TrimSpace(field(job)), value)
	}
}

var fullStackMarkers = []string{"full stack", "full-stack", "mern", "mean"}

// IsFullStack scans title, description and skills for full stack markers.
func IsFullStack(job models.Job) bool {
	var parts []string
	for _, f := range []string{job.Title, job.Description, strings.Join(job.Skills, " ")} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))

	for _, m := range fullStackMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return strings.Contains(text, "frontend") && strings.Contains(text, "backend")
}

func matchFullStack(job models.Job, value string) bool {
	switch strings.ToLower(value) {
	case "yes":
		return IsFullStack(job)
	case "no":
		return !IsFullStack(job)
	default:
		return true
	}
}

// band is a parsed range token: "N+" has no upper bound.
type band struct {
	min     float64
	max     float64
	openEnd bool
}

func (b band) contains(r models.Range) bool {
	if b.openEnd {
		return r.Min >= b.min
	}
	return r.Min >= b.min && r.Max <= b.max
}

// parseBand reads "N+" or "A-B" after stripping unit words. Anything
// else reports ok=false so the dimension stays non-restrictive.
func parseBand(token string, units ...string) (band, bool) {
	t := strings.ToLower(token)
	for _, u := range units {
		t = strings.ReplaceAll(t, u, "")
	}
	t = strings.Join(strings.Fields(t), "")

	if i := strings.Index(t, "+"); i >= 0 {
		n, err := strconv.ParseFloat(t[:i], 64)
		if err != nil {
			return band{}, false
		}
		return band{min: n, openEnd: true}, true
	}

	lo, hi, found := strings.Cut(t, "-")
	if !found {
		return band{}, false
	}
	from, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return band{}, false
	}
	to, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return band{}, false
	}

	return band{min: from, max: to}, true
}
