package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a learn job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusSegmenting JobStatus = "segmenting"
	StatusIndexing   JobStatus = "indexing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one upload being learned into the index.
type Job struct {
	mu sync.Mutex

	ID       string
	UploadID string
	Filename string

	Status JobStatus
	Phase  string

	Progress Progress

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}

// Progress tracks processing progress.
type Progress struct {
	Units   int      `json:"units"`
	Chunks  int      `json:"chunks"`
	Indexed int      `json:"indexed"`
	Errors  []string `json:"errors"`
}

// NewJob returns a queued job for upload.
func NewJob(id, uploadID, filename string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		UploadID:  uploadID,
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs idle for longer than the TTL. Queued and
// running jobs are kept.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Done() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Done reports whether status is terminal.
func (st JobStatus) Done() bool {
	return st == StatusCompleted || st == StatusFailed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Done() {
		j.CompletedAt = j.UpdatedAt
	}
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase string, err error) {
	j.AddError(err.Error())
	j.SetStatus(StatusFailed, phase)
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// SetUnits records how many pages or paragraphs were loaded.
func (j *Job) SetUnits(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Units = n
	j.UpdatedAt = time.Now()
}

// SetChunks records the segmenter output size.
func (j *Job) SetChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chunks = n
	j.UpdatedAt = time.Now()
}

// SetIndexed records how many chunks were written to the index.
func (j *Job) SetIndexed(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Indexed = n
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string     `json:"job_id"`
	UploadID    string     `json:"upload_id"`
	Filename    string     `json:"filename"`
	Status      JobStatus  `json:"status"`
	Phase       string     `json:"phase"`
	Progress    Progress   `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// ProcessingSeconds is the wall time from submission to completion.
	ProcessingSeconds float64 `json:"processing_time,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)

	snap := JobSnapshot{
		ID:        j.ID,
		UploadID:  j.UploadID,
		Filename:  j.Filename,
		Status:    j.Status,
		Phase:     j.Phase,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			Units:   j.Progress.Units,
			Chunks:  j.Progress.Chunks,
			Indexed: j.Progress.Indexed,
			Errors:  errs,
		},
	}
	if !j.CompletedAt.IsZero() {
		done := j.CompletedAt
		snap.CompletedAt = &done
		snap.ProcessingSeconds = done.Sub(j.CreatedAt).Seconds()
	}
	return snap
}
