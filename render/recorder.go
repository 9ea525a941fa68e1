package render

import "sync"

// Snapshot is the visible state of every sink.
type Snapshot struct {
	Results           string
	Facets            string
	Summary           string
	NoResults         bool
	SortVisible       bool
	PaginationVisible bool
	Count             int64
	Range             string
	PrevDisabled      bool
	NextDisabled      bool

	// Mutations counts sink writes since creation.
	Mutations int
}

// Recorder is an in-memory Sinks implementation.
type Recorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewRecorder starts in the state of a freshly loaded page: sort control
// visible, pagination hidden, both buttons disabled.
func NewRecorder() *Recorder {
	return &Recorder{snap: Snapshot{
		SortVisible:  true,
		PrevDisabled: true,
		NextDisabled: true,
	}}
}

// Snapshot returns a copy of the current state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Recorder) update(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.snap)
	r.snap.Mutations++
}

func (r *Recorder) ReplaceResults(markup string) { r.update(func(s *Snapshot) { s.Results = markup }) }
func (r *Recorder) ReplaceFacets(markup string)  { r.update(func(s *Snapshot) { s.Facets = markup }) }
func (r *Recorder) ReplaceSummary(markup string) { r.update(func(s *Snapshot) { s.Summary = markup }) }
func (r *Recorder) SetNoResults(on bool)         { r.update(func(s *Snapshot) { s.NoResults = on }) }
func (r *Recorder) ShowSort(visible bool)        { r.update(func(s *Snapshot) { s.SortVisible = visible }) }
func (r *Recorder) ShowPagination(visible bool)  { r.update(func(s *Snapshot) { s.PaginationVisible = visible }) }
func (r *Recorder) SetCount(total int64)         { r.update(func(s *Snapshot) { s.Count = total }) }
func (r *Recorder) SetRange(text string)         { r.update(func(s *Snapshot) { s.Range = text }) }
func (r *Recorder) SetPrevDisabled(disabled bool) {
	r.update(func(s *Snapshot) { s.PrevDisabled = disabled })
}
func (r *Recorder) SetNextDisabled(disabled bool) {
	r.update(func(s *Snapshot) { s.NextDisabled = disabled })
}
