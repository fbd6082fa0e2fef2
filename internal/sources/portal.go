package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"job-board-go/internal/models"
	"job-board-go/pkg/httpclient"
)

// DefaultJobsField is the response field that carries the job array.
const DefaultJobsField = "jobsdata"

var _ SkipCounter = (*PortalSource)(nil)

// PortalSource reads the full job collection from the job portal REST API.
type PortalSource struct {
	client  *httpclient.HttpClient
	baseURL string
	field   string
	skipped atomic.Int64
}

// NewPortalSource creates a source for jobsURL; an empty field uses
// DefaultJobsField.
func NewPortalSource(client *httpclient.HttpClient, jobsURL, field string) *PortalSource {
	if field == "" {
		field = DefaultJobsField
	}
	return &PortalSource{
		client:  client,
		baseURL: jobsURL,
		field:   field,
	}
}

func (p *PortalSource) Name() string {
	return "Portal"
}

// Skipped returns the number of records dropped by the last fetch.
func (p *PortalSource) Skipped() int {
	return int(p.skipped.Load())
}

func (p *PortalSource) FetchJobs(ctx context.Context) ([]models.Job, error) {
	resp, err := p.client.Get(ctx, p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from job portal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job portal API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse job portal response: %w", err)
	}

	raw, ok := envelope[p.field]
	if !ok || string(raw) == "null" {
		p.skipped.Store(0)
		return []models.Job{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.field, err)
	}

	jobs, skipped := decodeJobs(records)
	p.skipped.Store(int64(skipped))
	return jobs, nil
}
