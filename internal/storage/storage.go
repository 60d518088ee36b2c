package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collection-tools/registrar/internal/models"
)

const defaultMaxLog = 500

type JobStore struct {
	jobs    map[string]*models.Job
	cancels map[string]context.CancelFunc
	active  string
	maxLog  int
	mu      sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs:    make(map[string]*models.Job),
		cancels: make(map[string]context.CancelFunc),
		maxLog:  defaultMaxLog,
	}
}

// Create registers a new pending job. Only one job may be pending or
// running at a time.
func (s *JobStore) Create(req models.JobRequest) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		if job, ok := s.jobs[s.active]; ok && !job.Finished() {
			return models.Job{}, fmt.Errorf("job %s is still %s", job.ID, job.Status)
		}
	}

	job := &models.Job{
		ID:        uuid.New().String(),
		Request:   req,
		Status:    models.JobPending,
		CreatedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	s.active = job.ID
	return copyJob(job), nil
}

func (s *JobStore) SetCancel(jobID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[jobID] = cancel
}

// SetStatus moves a job to a new state. Terminal states stamp the finish
// time and release the single-job slot.
func (s *JobStore) SetStatus(jobID, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Status = status
	job.Error = errMsg
	if job.Finished() {
		now := time.Now()
		job.FinishedAt = &now
		if s.active == jobID {
			s.active = ""
		}
		delete(s.cancels, jobID)
	}
}

func (s *JobStore) AppendLog(jobID, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Log = append(job.Log, line)
	if len(job.Log) > s.maxLog {
		job.Log = job.Log[len(job.Log)-s.maxLog:]
	}
}

// Cancel invokes the job's cancel function. It reports whether the job
// existed and was still cancellable.
func (s *JobStore) Cancel(jobID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[jobID]
	delete(s.cancels, jobID)
	s.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	return true
}

func (s *JobStore) Get(jobID string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return copyJob(job), true
}

// Active returns the job currently holding the single-job slot.
func (s *JobStore) Active() (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return models.Job{}, false
	}
	job, ok := s.jobs[s.active]
	if !ok {
		return models.Job{}, false
	}
	return copyJob(job), true
}

// GetAll returns all jobs, newest first.
func (s *JobStore) GetAll() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == jobID {
		s.active = ""
	}
	delete(s.cancels, jobID)
	delete(s.jobs, jobID)
}

// copyJob detaches the stored job from callers; the log slice is shared
// state the runner keeps appending to.
func copyJob(job *models.Job) models.Job {
	out := *job
	out.Log = append([]string(nil), job.Log...)
	return out
}
