package surface

import (
	"sync"
	"time"

	"job-board-go/internal/filter"
)

// Applier is the part of the engine the surfaces drive.
type Applier interface {
	ApplyFilters(spec filter.Spec)
}

// Dashboard wires the search bar and the sidebar to one engine. Each
// change on either surface applies the merged spec.
type Dashboard struct {
	engine Applier

	Search  *SearchBar
	Sidebar *Sidebar

	// applyMu orders merge and apply as one step
	applyMu sync.Mutex

	mu     sync.Mutex
	search filter.Spec
	facets filter.Selections
}

func NewDashboard(engine Applier, debounce time.Duration) *Dashboard {
	d := &Dashboard{
		engine: engine,
		search: filter.Spec{},
		facets: filter.Selections{},
	}
	d.Search = NewSearchBar(d.onSearch, debounce)
	d.Sidebar = NewSidebar(d.onSidebarChange)
	return d
}

// Surface callbacks run outside the surfaces' locks and may arrive out of
// order, so the reported snapshot is ignored and current state is re-read
// while applyMu is held.
func (d *Dashboard) onSearch(filter.Spec) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	draft := d.Search.Draft()

	d.mu.Lock()
	d.search = draft
	merged := filter.Merge(d.search, d.facets)
	d.mu.Unlock()

	d.engine.ApplyFilters(merged)
}

func (d *Dashboard) onSidebarChange(filter.Selections) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	sel := d.Sidebar.Selections()

	d.mu.Lock()
	d.facets = sel
	merged := filter.Merge(d.search, d.facets)
	d.mu.Unlock()

	d.engine.ApplyFilters(merged)
}

// Effective returns the spec the dashboard last applied.
func (d *Dashboard) Effective() filter.Spec {
	d.mu.Lock()
	defer d.mu.Unlock()

	return filter.Merge(d.search, d.facets)
}

// ClearAll resets both surfaces and applies an empty spec.
func (d *Dashboard) ClearAll() {
	d.Search.Sync(filter.Spec{})
	d.Search.debouncer.Cancel()

	d.mu.Lock()
	d.search = filter.Spec{}
	d.mu.Unlock()

	d.Sidebar.Reset()
}

// Close releases the search bar timer.
func (d *Dashboard) Close() {
	d.Search.Close()
}
