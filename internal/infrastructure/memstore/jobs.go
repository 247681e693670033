// Package memstore holds an in-memory JobStore used when no Redis
// endpoint is configured, and by tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vidgrab/internal/domain/download"
)

// JobStore keeps job records in a mutex-guarded map. Reads hand out
// copies so callers cannot mutate stored state without Update.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*download.Job
}

// NewJobStore creates an empty in-memory store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*download.Job)}
}

// Create adds a new job record.
func (s *JobStore) Create(_ context.Context, job *download.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the job record.
func (s *JobStore) Get(_ context.Context, id string) (*download.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[id]
	if !exists {
		return nil, download.ErrNotFound
	}
	return job.Clone(), nil
}

// Update replaces an existing job record.
func (s *JobStore) Update(_ context.Context, job *download.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; !exists {
		return download.ErrNotFound
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Delete removes a job record.
func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[id]; !exists {
		return download.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

// List returns all job records, newest first.
func (s *JobStore) List(_ context.Context) ([]*download.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*download.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
