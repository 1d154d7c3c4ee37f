package pipeline

import (
	"crypto/sha256"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/sections"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusChunking   JobStatus = "chunking"
	StatusGenerating JobStatus = "generating"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Terminal reports whether no further transitions follow s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks one report generation. Streamed text accumulates on the job
// so any number of watchers can follow it.
type Job struct {
	mu sync.Mutex

	ID     string
	UserID string

	Status   JobStatus
	Phase    string
	Filename string
	Brief    generate.Brief

	Progress Progress

	ContentHash string
	Stored      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	fileData []byte
	text     []byte
	gen      int
	wake     chan struct{}
}

// Progress tracks processing progress.
type Progress struct {
	SourceChunks int                       `json:"source_chunks"`
	ChunksUsed   int                       `json:"chunks_used"`
	Attempts     int                       `json:"attempts"`
	Chars        int                       `json:"chars"`
	Structured   bool                      `json:"structured"`
	Sections     map[sections.Category]int `json:"sections,omitempty"`
	Errors       []string                  `json:"errors"`
}

// Cursor marks how much of a job's text a watcher has seen. Gen changes
// whenever the text is reset for a retry.
type Cursor struct {
	Gen    int `json:"gen"`
	Offset int `json:"offset"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob(userID string, brief generate.Brief) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Brief:     brief,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a bounded in-memory job registry. Jobs expire ttl after
// they were last stored and the oldest are evicted past maxJobs.
type JobStore struct {
	lru *expirable.LRU[string, *Job]
}

func NewJobStore(maxJobs int, ttl time.Duration) *JobStore {
	return &JobStore{lru: expirable.NewLRU[string, *Job](maxJobs, nil, ttl)}
}

func (s *JobStore) Put(job *Job) {
	s.lru.Add(job.ID, job)
}

// Get returns the job or nil.
func (s *JobStore) Get(id string) *Job {
	job, _ := s.lru.Get(id)
	return job
}

func (s *JobStore) Len() int {
	return s.lru.Len()
}

// broadcast wakes every watcher. Callers hold j.mu.
func (j *Job) broadcast() {
	j.UpdatedAt = time.Now()
	if j.wake != nil {
		close(j.wake)
		j.wake = nil
	}
}

// Watch returns a channel that is closed on the next change to the job.
func (j *Job) Watch() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.wake == nil {
		j.wake = make(chan struct{})
	}
	return j.wake
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.broadcast()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.broadcast()
}

// SetChunks records how many source chunks were found and how many fit
// in the prompt.
func (j *Job) SetChunks(total, used int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SourceChunks = total
	j.Progress.ChunksUsed = used
	j.broadcast()
}

// AppendText adds streamed text and wakes watchers.
func (j *Job) AppendText(delta string) {
	if delta == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.text = append(j.text, delta...)
	j.Progress.Chars = len(j.text)
	j.broadcast()
}

// BeginAttempt counts a generation attempt. Text from an earlier attempt
// is discarded, which watchers see as a reset.
func (j *Job) BeginAttempt() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Attempts++
	if j.Progress.Attempts > 1 {
		j.text = j.text[:0]
		j.gen++
		j.Progress.Chars = 0
	}
	j.broadcast()
}

// TextFrom returns the text after c and the cursor to continue from. If
// the text was reset since c was taken, reset is true and the whole
// current text is returned.
func (j *Job) TextFrom(c Cursor) (text string, next Cursor, reset bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c.Gen != j.gen || c.Offset > len(j.text) {
		c = Cursor{Gen: j.gen}
		reset = true
	}
	return string(j.text[c.Offset:]), Cursor{Gen: j.gen, Offset: len(j.text)}, reset
}

// Text returns the accumulated text.
func (j *Job) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return string(j.text)
}

// SetSections records the per-category section counts of the finished text.
func (j *Job) SetSections(doc sections.Document) {
	counts := make(map[sections.Category]int, len(sections.Categories))
	for _, c := range sections.Categories {
		counts[c] = len(doc.Sections(c))
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Sections = counts
	j.Progress.Structured = doc.HasStructuredContent()
	j.broadcast()
}

// SetStored marks the report as persisted.
func (j *Job) SetStored() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Stored = true
	j.broadcast()
}

// SetFileData attaches a source document to the job.
func (j *Job) SetFileData(filename string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Filename = filename
	j.fileData = data
}

// SetContentHash records the hash of the parsed source text.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// FileData returns the source file bytes, nil when the job has none.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	UserID      string    `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename,omitempty"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Stored      bool      `json:"stored"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.Progress.Errors...)
	p.Sections = maps.Clone(j.Progress.Sections)
	return JobSnapshot{
		ID:          j.ID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Brief.Label(),
		ContentHash: j.ContentHash,
		Stored:      j.Stored,
		Progress:    p,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
