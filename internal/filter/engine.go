package filter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"job-board-go/internal/models"
)

var (
	// ErrNotLoaded is returned by lookups made before the collection loaded.
	ErrNotLoaded   = errors.New("jobs not loaded")
	ErrJobNotFound = errors.New("job not found")
)

// Fetcher supplies the normalized job collection.
type Fetcher interface {
	FetchJobs(ctx context.Context) ([]models.Job, error)
}

// Engine owns the job collection, the current filter spec and the
// filtered view derived from them.
type Engine struct {
	fetcher Fetcher
	logger  *log.Logger

	mu       sync.RWMutex
	allJobs  []models.Job
	filters  Spec
	filtered []models.Job
	loading  bool
	err      error
}

// Snapshot is a consistent read of the engine state.
type Snapshot struct {
	Jobs    []models.Job `json:"jobs"`
	Total   int          `json:"total"`
	Filters Spec         `json:"filters"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
}

// NewEngine creates an engine in the loading state.
func NewEngine(fetcher Fetcher, logger *log.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		logger:  logger,
		filters: Spec{},
		loading: true,
	}
}

// Load fetches the collection. On success the current filters are
// re-applied; on failure the engine keeps the error until the next
// successful load.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	e.loading = true
	e.mu.Unlock()

	jobs, err := e.fetcher.FetchJobs(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.loading = false
	if err != nil {
		e.err = fmt.Errorf("failed to load jobs: %w", err)
		e.logger.Printf("Error loading jobs: %v", err)
		return e.err
	}

	e.err = nil
	e.allJobs = jobs
	e.filtered = jobs
	e.logger.Printf("Jobs loaded: %d", len(jobs))

	if e.filters.ActiveCount() > 0 {
		e.applyLocked(e.filters)
	}
	return nil
}

// Refetch is the manual retry after a failed load.
func (e *Engine) Refetch(ctx context.Context) error {
	return e.Load(ctx)
}

// ApplyFilters replaces the stored spec and recomputes the view. Before
// the collection has loaded the view is left untouched.
func (e *Engine) ApplyFilters(spec Spec) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.applyLocked(spec.Clone())
}

func (e *Engine) applyLocked(spec Spec) {
	e.filters = spec

	if len(e.allJobs) == 0 {
		e.logger.Printf("No jobs to filter")
		return
	}

	e.filtered = Apply(e.allJobs, spec)
	e.logger.Printf("Applied %d filter(s): %d of %d jobs match", spec.ActiveCount(), len(e.filtered), len(e.allJobs))
}

// ClearFilters deactivates every dimension and shows the full collection.
func (e *Engine) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filters = Spec{}
	e.filtered = e.allJobs
	e.logger.Printf("Cleared filters")
}

// ClearSingleFilter deactivates d and re-runs the whole pipeline.
func (e *Engine) ClearSingleFilter(d Dimension) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.applyLocked(e.filters.Without(d))
}

// Jobs returns the filtered view.
func (e *Engine) Jobs() []models.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return cloneJobs(e.filtered)
}

// AllJobs returns the full collection.
func (e *Engine) AllJobs() []models.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return cloneJobs(e.allJobs)
}

func (e *Engine) Filters() Spec {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.filters.Clone()
}

func (e *Engine) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.loading
}

func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.err
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Jobs:    cloneJobs(e.filtered),
		Total:   len(e.allJobs),
		Filters: e.filters.Clone(),
		Loading: e.loading,
	}
	if e.err != nil {
		s.Error = e.err.Error()
	}
	return s
}

// JobByID looks a job up in the full collection.
func (e *Engine) JobByID(id string) (models.Job, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.allJobs) == 0 {
		return models.Job{}, ErrNotLoaded
	}
	for _, job := range e.allJobs {
		if job.ID == id {
			return job, nil
		}
	}
	return models.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

func cloneJobs(jobs []models.Job) []models.Job {
	out := make([]models.Job, len(jobs))
	copy(out, jobs)
	return out
}
