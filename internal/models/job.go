package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Job is a single listing as served by the job portal API.
// Location, Experience and Salary accept either a plain string or a
// structured object on the wire.
type Job struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    Location  `json:"location"`
	Experience  Span      `json:"experience"`
	Salary      Span      `json:"salary"`
	Skills      []string  `json:"skills"`
	Industry    string    `json:"industry"`
	Function    string    `json:"function"`
	JobType     string    `json:"jobType"`
	Description string    `json:"description"`
	PostedDate  time.Time `json:"postedDate"`
	Openings    int       `json:"openings"`
}

// JobType constants
const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
	JobTypeRemote     = "Remote"
)

// Vocabularies offered by the search surfaces.
var (
	Industries = []string{"IT", "Healthcare", "Finance", "E-commerce", "Education", "Manufacturing", "Retail"}
	Functions  = []string{"Engineering", "Marketing", "Sales", "HR", "Finance", "Operations", "Design"}
	JobTypes   = []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}
)

// Defaults applied to missing upstream fields.
const (
	DefaultLocation = "Remote"
	DefaultIndustry = "IT"
	DefaultFunction = "Engineering"
	DefaultJobType  = JobTypeFullTime
	DefaultOpenings = 1
)

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	aux := struct {
		*plain
		AltID      json.RawMessage `json:"id"`
		Skills     json.RawMessage `json:"skills"`
		PostedDate json.RawMessage `json:"postedDate"`
		Openings   json.RawMessage `json:"openings"`
	}{plain: (*plain)(j)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if j.ID == "" && len(aux.AltID) > 0 {
		j.ID = rawScalar(aux.AltID)
	}

	j.Skills = decodeSkills(aux.Skills)

	// Upstream records carry ISO strings, sometimes empty ones.
	if s := rawScalar(aux.PostedDate); s != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				j.PostedDate = t
				break
			}
		}
	}

	if s := rawScalar(aux.Openings); s != "" {
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
			j.Openings = n
		}
	}

	return nil
}

// decodeSkills accepts an array or a comma-separated string. Any other
// shape yields no skills.
func decodeSkills(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var parts []string
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		for _, item := range items {
			parts = append(parts, rawScalar(item))
		}
	case '"':
		parts = strings.Split(rawScalar(raw), ",")
	default:
		return nil
	}

	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// rawScalar returns a JSON string or number as plain text.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	return string(raw)
}

// Normalize fills every missing field with its default and resolves the
// numeric bounds of experience and salary. now is used for a missing
// posted date.
func Normalize(job Job, now time.Time) Job {
	if job.Location.IsZero() {
		job.Location = Location{Text: DefaultLocation}
	}

	job.Experience = job.Experience.resolve(1)
	job.Salary = job.Salary.resolve(salaryTextScale(job.Salary.Text))

	if job.Skills == nil {
		job.Skills = []string{}
	}
	if job.Industry == "" {
		job.Industry = DefaultIndustry
	}
	if job.Function == "" {
		job.Function = DefaultFunction
	}
	if job.JobType == "" {
		job.JobType = DefaultJobType
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = now
	}
	if job.Openings <= 0 {
		job.Openings = DefaultOpenings
	}

	return job
}

// salaryTextScale converts lakh-denominated salary text to absolute units.
func salaryTextScale(text string) float64 {
	lower := strings.ToLower(text)
	for _, marker := range []string{"lpa", "lakh", "lac"} {
		if strings.Contains(lower, marker) {
			return LakhUnits
		}
	}
	return 1
}

// LakhUnits is the number of currency units in one lakh.
const LakhUnits = 100000
