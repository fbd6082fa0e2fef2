package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"job-board-go/internal/models"
)

// JobSource supplies the raw job collection. Jobs are returned as
// decoded from upstream; normalization happens in the loader.
type JobSource interface {
	Name() string
	FetchJobs(ctx context.Context) ([]models.Job, error)
}

// SkipCounter is implemented by sources that drop undecodable records.
// Skipped reports the count dropped by the last fetch.
type SkipCounter interface {
	Skipped() int
}

// decodeJobs decodes each record on its own so one malformed record
// does not fail the collection. It returns the jobs and the number of
// records skipped.
func decodeJobs(records []json.RawMessage) ([]models.Job, int) {
	jobs := make([]models.Job, 0, len(records))
	skipped := 0
	for _, rec := range records {
		var job models.Job
		if err := json.Unmarshal(rec, &job); err != nil {
			skipped++
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, skipped
}

// SourceConfig holds the per-source settings of the manager.
type SourceConfig struct {
	Enabled  bool `json:"enabled"`
	Priority int  `json:"priority"`
}

// SourceManager manages all job sources
type SourceManager struct {
	sources map[string]JobSource
	configs map[string]SourceConfig
}

// NewSourceManager creates a new source manager
func NewSourceManager() *SourceManager {
	return &SourceManager{
		sources: make(map[string]JobSource),
		configs: make(map[string]SourceConfig),
	}
}

// RegisterSource registers a new job source
func (sm *SourceManager) RegisterSource(source JobSource, config SourceConfig) {
	sm.sources[source.Name()] = source
	sm.configs[source.Name()] = config
}

// GetSources returns all registered sources
func (sm *SourceManager) GetSources() map[string]JobSource {
	return sm.sources
}

// GetEnabledSources returns enabled sources ordered by priority, then name.
func (sm *SourceManager) GetEnabledSources() []JobSource {
	var enabled []JobSource
	for name, source := range sm.sources {
		if config, exists := sm.configs[name]; exists && config.Enabled {
			enabled = append(enabled, source)
		}
	}

	sort.Slice(enabled, func(i, j int) bool {
		pi, pj := sm.configs[enabled[i].Name()].Priority, sm.configs[enabled[j].Name()].Priority
		if pi != pj {
			return pi < pj
		}
		return enabled[i].Name() < enabled[j].Name()
	})
	return enabled
}

// GetSourceConfig returns configuration for a source
func (sm *SourceManager) GetSourceConfig(name string) (SourceConfig, bool) {
	config, exists := sm.configs[name]
	return config, exists
}

// Primary returns the enabled source with the lowest priority value.
func (sm *SourceManager) Primary() (JobSource, error) {
	enabled := sm.GetEnabledSources()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no enabled job source found")
	}
	return enabled[0], nil
}
