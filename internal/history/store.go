// Package history keeps completed runs in memory for the lifetime of the
// process so re-rendering and post-ranking reveal never re-call backends.
// Runs are not persisted beyond the process.
package history

import (
	"sync"
	"time"

	"github.com/blindpanel/blindpanel-go/internal/experiment"
)

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Question  string    `json:"question"`
}

// Store is a mutex-guarded in-memory run index keyed by run id.
type Store struct {
	mu    sync.Mutex
	runs  map[string]*experiment.Run
	order []string
}

func NewStore() *Store {
	return &Store{runs: make(map[string]*experiment.Run)}
}

// Save records a completed run. Saving the same id twice keeps the first.
func (s *Store) Save(run *experiment.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
}

// Get returns the stored run, exactly as served at submission time.
func (s *Store) Get(id string) (*experiment.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

// List returns summaries of all stored runs in creation order.
func (s *Store) List() []RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunSummary, 0, len(s.order))
	for _, id := range s.order {
		r := s.runs[id]
		out = append(out, RunSummary{ID: r.ID, CreatedAt: r.CreatedAt, Question: r.Question})
	}
	return out
}
