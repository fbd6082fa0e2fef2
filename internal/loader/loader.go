package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"job-board-go/internal/cache"
	"job-board-go/internal/models"
	"job-board-go/internal/sources"
)

// Snapshots is the cache the loader reads on its first load and writes
// after every successful fetch.
type Snapshots interface {
	Get(ctx context.Context) ([]models.Job, error)
	Set(ctx context.Context, jobs []models.Job) error
}

// LoadMetrics tracks ingestion.
type LoadMetrics struct {
	Source       string        `json:"source"`
	JobsFetched  int64         `json:"jobs_fetched"`
	JobsLoaded   int64         `json:"jobs_loaded"`
	Duplicates   int64         `json:"duplicates"`
	Errors       int64         `json:"errors"`
	CacheHits    int64         `json:"cache_hits"`
	LoadDuration time.Duration `json:"load_duration"`
	LastLoaded   time.Time     `json:"last_loaded"`
}

// Loader fetches, normalizes and deduplicates the job collection. It
// implements filter.Fetcher.
type Loader struct {
	source       sources.JobSource
	snapshots    Snapshots
	deduplicator *Deduplicator
	logger       *log.Logger
	now          func() time.Time

	mu      sync.RWMutex
	metrics LoadMetrics
	loads   int
}

// NewLoader creates a loader; snapshots may be nil.
func NewLoader(source sources.JobSource, snapshots Snapshots, logger *log.Logger) *Loader {
	return &Loader{
		source:       source,
		snapshots:    snapshots,
		deduplicator: NewDeduplicator(),
		logger:       logger,
		now:          time.Now,
		metrics:      LoadMetrics{Source: source.Name()},
	}
}

// FetchJobs returns the normalized collection. Only the first call may be
// served from the snapshot cache; later calls are manual refetches and
// always go upstream.
func (l *Loader) FetchJobs(ctx context.Context) ([]models.Job, error) {
	startTime := time.Now()

	l.mu.Lock()
	first := l.loads == 0
	l.loads++
	l.mu.Unlock()

	if first && l.snapshots != nil {
		if jobs, ok := l.fromSnapshot(ctx); ok {
			l.record(func(m *LoadMetrics) {
				m.CacheHits++
				m.JobsLoaded = int64(len(jobs))
				m.LoadDuration = time.Since(startTime)
				m.LastLoaded = l.now()
			})
			l.logger.Printf("Loaded %d jobs from snapshot cache in %v", len(jobs), time.Since(startTime))
			return jobs, nil
		}
	}

	raw, err := l.source.FetchJobs(ctx)
	if err != nil {
		l.record(func(m *LoadMetrics) { m.Errors++ })
		return nil, fmt.Errorf("%s: %w", l.source.Name(), err)
	}

	skipped := 0
	if counter, ok := l.source.(sources.SkipCounter); ok {
		skipped = counter.Skipped()
	}
	if skipped > 0 {
		l.logger.Printf("Skipped %d malformed records from %s", skipped, l.source.Name())
	}

	jobs := l.normalize(raw)
	unique := l.deduplicator.RemoveDuplicates(jobs)
	duplicates := len(jobs) - len(unique)

	l.record(func(m *LoadMetrics) {
		m.JobsFetched = int64(len(raw))
		m.JobsLoaded = int64(len(unique))
		m.Duplicates = int64(duplicates)
		m.Errors += int64(skipped)
		m.LoadDuration = time.Since(startTime)
		m.LastLoaded = l.now()
	})

	l.logger.Printf("Fetched %d jobs from %s (%d unique, %d duplicates) in %v",
		len(raw), l.source.Name(), len(unique), duplicates, time.Since(startTime))

	if l.snapshots != nil {
		if err := l.snapshots.Set(ctx, unique); err != nil {
			l.logger.Printf("Failed to store snapshot: %v", err)
		}
	}

	return unique, nil
}

func (l *Loader) fromSnapshot(ctx context.Context) ([]models.Job, bool) {
	jobs, err := l.snapshots.Get(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			l.logger.Printf("Snapshot cache unavailable: %v", err)
		}
		return nil, false
	}
	if len(jobs) == 0 {
		return nil, false
	}
	// span bounds are not serialized for text values
	return l.normalize(jobs), true
}

func (l *Loader) normalize(raw []models.Job) []models.Job {
	now := l.now()
	jobs := make([]models.Job, len(raw))
	for i, job := range raw {
		jobs[i] = models.Normalize(job, now)
	}
	return jobs
}

func (l *Loader) record(update func(*LoadMetrics)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	update(&l.metrics)
}

// GetMetrics returns current load metrics
func (l *Loader) GetMetrics() LoadMetrics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.metrics
}
