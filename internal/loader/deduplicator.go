package loader

import (
	"crypto/md5"
	"fmt"
	"strings"

	"job-board-go/internal/models"
)

// Deduplicator drops repeated jobs from one fetched collection, keeping
// the first occurrence and the original order.
type Deduplicator struct{}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// RemoveDuplicates removes duplicate jobs from a slice
func (d *Deduplicator) RemoveDuplicates(jobs []models.Job) []models.Job {
	seen := make(map[string]bool, len(jobs))
	unique := make([]models.Job, 0, len(jobs))

	for _, job := range jobs {
		key := d.jobKey(job)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, job)
	}

	return unique
}

// jobKey is the job id, or a hash of title, company and location for
// records without one.
func (d *Deduplicator) jobKey(job models.Job) string {
	if id := strings.TrimSpace(job.ID); id != "" {
		return "id:" + id
	}

	title := strings.ToLower(strings.TrimSpace(job.Title))
	company := strings.ToLower(strings.TrimSpace(job.Company))
	location := strings.ToLower(strings.TrimSpace(job.Location.String()))

	key := fmt.Sprintf("%s|%s|%s", title, company, location)
	hash := md5.Sum([]byte(key))
	return fmt.Sprintf("hash:%x", hash)
}
