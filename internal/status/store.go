package status

import (
	"sync"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
)

// Store is the process-wide map from job identifier to mutable status record.
// The download service mutates download jobs, the worker mutates process jobs,
// and the polling handlers only read. Entries are never deleted during the
// process lifetime.
type Store struct {
	mu        sync.RWMutex
	downloads map[string]*domain.DownloadJob
	processes map[string]*domain.ProcessJob
}

// NewStore creates an empty status store.
func NewStore() *Store {
	return &Store{
		downloads: make(map[string]*domain.DownloadJob),
		processes: make(map[string]*domain.ProcessJob),
	}
}

// PutDownload registers a new download job record. Identifiers are never
// reused, so an existing entry is an error on the caller's side and is
// overwritten.
func (s *Store) PutDownload(job domain.DownloadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads[job.ID] = &job
}

// GetDownload returns a copy of the download job record.
func (s *Store) GetDownload(id string) (domain.DownloadJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.downloads[id]
	if !ok {
		return domain.DownloadJob{}, apperrors.ErrJobNotFound
	}
	return *job, nil
}

// UpdateDownload applies fn to the download job record under the write lock.
// Progress regressions are discarded so stale callback deliveries can never
// roll a more advanced value back.
func (s *Store) UpdateDownload(id string, fn func(*domain.DownloadJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.downloads[id]
	if !ok {
		return
	}
	prev := job.Progress
	fn(job)
	if job.Progress < prev {
		job.Progress = prev
	}
	if job.Progress > 100 {
		job.Progress = 100
	}
}

// Downloads returns copies of all download job records.
func (s *Store) Downloads() []domain.DownloadJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]domain.DownloadJob, 0, len(s.downloads))
	for _, job := range s.downloads {
		jobs = append(jobs, *job)
	}
	return jobs
}

// PutProcess registers a new process job record.
func (s *Store) PutProcess(job domain.ProcessJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[job.ID] = &job
}

// GetProcess returns a copy of the process job record.
func (s *Store) GetProcess(id string) (domain.ProcessJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.processes[id]
	if !ok {
		return domain.ProcessJob{}, apperrors.ErrJobNotFound
	}
	return *job, nil
}

// UpdateProcess applies fn to the process job record under the write lock,
// with the same monotonic-progress guard as downloads.
func (s *Store) UpdateProcess(id string, fn func(*domain.ProcessJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.processes[id]
	if !ok {
		return
	}
	prev := job.Progress
	fn(job)
	if job.Progress < prev {
		job.Progress = prev
	}
	if job.Progress > 100 {
		job.Progress = 100
	}
}

// Processes returns copies of all process job records.
func (s *Store) Processes() []domain.ProcessJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]domain.ProcessJob, 0, len(s.processes))
	for _, job := range s.processes {
		jobs = append(jobs, *job)
	}
	return jobs
}
