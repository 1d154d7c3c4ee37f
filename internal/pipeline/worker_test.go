package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/seolens/internal/chunker"
	"github.com/dgallion1/seolens/internal/config"
	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/parser"
	"github.com/dgallion1/seolens/internal/reportstore"
	"github.com/dgallion1/seolens/internal/sections"
)

const reportText = "SECTION 1: BASIC METADATA\nPAGE TITLE: Widgets\nMETA DESCRIPTION: Buy widgets\n" +
	"SECTION 3: CONTENT OPTIMIZATION\nPRIORITY 1: FAQ Section\nAdd questions.\n"

// fakeGen replays one scripted result per attempt.
type fakeGen struct {
	mu      sync.Mutex
	results []genResult
	prompts []generate.Prompt
}

type genResult struct {
	deltas []string
	err    error
}

func (f *fakeGen) Stream(ctx context.Context, p generate.Prompt, onDelta func(string)) (string, error) {
	f.mu.Lock()
	n := len(f.prompts)
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()

	r := f.results[min(n, len(f.results)-1)]
	var sb strings.Builder
	for _, d := range r.deltas {
		sb.WriteString(d)
		onDelta(d)
	}
	return sb.String(), r.err
}

func (f *fakeGen) Model() string { return "claude-test" }

func (f *fakeGen) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []reportstore.Report
	err   error
}

func (f *fakeSaver) SaveReport(_ context.Context, r reportstore.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorker(gen Generator, store ReportSaver) *Worker {
	w := NewWorker(gen, store, testLogger(), chunker.DefaultConfig(), 0, parser.Options{})
	w.backoff = func(int) time.Duration { return 0 }
	return w
}

func overloaded() error {
	return &generate.RetryableError{StatusCode: 529, Message: "overloaded"}
}

func TestWorker_CompletesAndStores(t *testing.T) {
	gen := &fakeGen{results: []genResult{{deltas: []string{reportText[:20], reportText[20:]}}}}
	saver := &fakeSaver{}
	job := NewJob("u1", generate.Brief{PageTitle: "Widget Shop", URL: "https://example.com"})

	newTestWorker(gen, saver).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if !snap.Stored {
		t.Error("expected report to be marked stored")
	}
	if job.Text() != reportText {
		t.Errorf("job text = %q", job.Text())
	}
	if snap.Progress.Sections[sections.Metadata] != 2 || snap.Progress.Sections[sections.Optimization] != 1 {
		t.Errorf("unexpected section counts %v", snap.Progress.Sections)
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected 1 saved report, got %d", len(saver.saved))
	}
	r := saver.saved[0]
	if r.ID != job.ID || r.UserID != "u1" || r.Title != "Widget Shop" || r.Slug != "widget-shop" || r.Model != "claude-test" {
		t.Errorf("unexpected report summary %+v", r.Summary)
	}
	if r.Text != reportText {
		t.Errorf("saved text = %q", r.Text)
	}
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	gen := &fakeGen{results: []genResult{
		{deltas: []string{"SECTION 1: half"}, err: overloaded()},
		{deltas: []string{reportText}},
	}}
	job := NewJob("", generate.Brief{Topic: "widgets"})

	newTestWorker(gen, nil).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", snap.Status)
	}
	if gen.calls() != 2 {
		t.Errorf("expected 2 attempts, got %d", gen.calls())
	}
	if snap.Progress.Attempts != 2 {
		t.Errorf("progress attempts = %d", snap.Progress.Attempts)
	}
	if job.Text() != reportText {
		t.Errorf("text from the failed attempt leaked: %q", job.Text())
	}
	if snap.Stored {
		t.Error("nothing should be stored without a report store")
	}
}

func TestWorker_Failures(t *testing.T) {
	tests := []struct {
		name      string
		results   []genResult
		wantCalls int
		want      JobStatus
	}{
		{
			name:      "retries exhausted without text",
			results:   []genResult{{err: overloaded()}},
			wantCalls: MaxRetries,
			want:      StatusFailed,
		},
		{
			name:      "permanent error is not retried",
			results:   []genResult{{err: &generate.APIError{StatusCode: 400, Message: "bad request"}}},
			wantCalls: 1,
			want:      StatusFailed,
		},
		{
			name:      "partial text survives a permanent error",
			results:   []genResult{{deltas: []string{"SECTION 1: BASIC METADATA\nPAGE TITLE: Hi\n"}, err: errors.New("stream cut")}},
			wantCalls: 1,
			want:      StatusPartial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{results: tt.results}
			job := NewJob("u1", generate.Brief{Topic: "widgets"})
			saver := &fakeSaver{}

			newTestWorker(gen, saver).Process(context.Background(), job)

			snap := job.Snapshot()
			if snap.Status != tt.want {
				t.Errorf("status = %q, want %q", snap.Status, tt.want)
			}
			if gen.calls() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", gen.calls(), tt.wantCalls)
			}
			if len(snap.Progress.Errors) == 0 {
				t.Error("expected an error to be recorded")
			}
			if len(saver.saved) != 0 {
				t.Error("failed generations must not be stored")
			}
		})
	}
}

func TestWorker_StoreFailureIsPartial(t *testing.T) {
	gen := &fakeGen{results: []genResult{{deltas: []string{reportText}}}}
	saver := &fakeSaver{err: errors.New("kv down")}
	job := NewJob("u1", generate.Brief{Topic: "widgets"})

	newTestWorker(gen, saver).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial || snap.Phase != "storing" {
		t.Errorf("status = %q/%q, want partial/storing", snap.Status, snap.Phase)
	}
	if snap.Stored {
		t.Error("report should not be marked stored")
	}
}

func TestWorker_UsesSourceDocument(t *testing.T) {
	gen := &fakeGen{results: []genResult{{deltas: []string{reportText}}}}
	job := NewJob("u1", generate.Brief{Topic: "widgets"})
	job.SetFileData("page.html", []byte(`<html><head><title>Widget Co</title>
<meta name="description" content="Cheap widgets"></head>
<body><h1>Widgets</h1><p>We sell blue widgets and red widgets to happy customers.</p></body></html>`))

	newTestWorker(gen, nil).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.SourceChunks == 0 || snap.Progress.ChunksUsed != snap.Progress.SourceChunks {
		t.Errorf("unexpected chunk progress %+v", snap.Progress)
	}
	if snap.ContentHash == "" {
		t.Error("expected a content hash for the source")
	}
	user := gen.prompts[0].User
	for _, want := range []string{"Cheap widgets", "blue widgets"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q:\n%s", want, user)
		}
	}
}

func TestWorker_UnsupportedSourceFails(t *testing.T) {
	gen := &fakeGen{results: []genResult{{deltas: []string{reportText}}}}
	job := NewJob("u1", generate.Brief{Topic: "widgets"})
	job.SetFileData("slides.pptx", []byte("PK"))

	newTestWorker(gen, nil).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("status = %q/%q, want failed/parsing", snap.Status, snap.Phase)
	}
	if gen.calls() != 0 {
		t.Error("generation should not start for an unparsable source")
	}
}

func TestWorker_CancelledDuringBackoff(t *testing.T) {
	gen := &fakeGen{results: []genResult{{err: overloaded()}}}
	w := newTestWorker(gen, nil)
	w.backoff = func(int) time.Duration { return time.Hour }
	ctx, cancel := context.WithCancel(context.Background())
	job := NewJob("u1", generate.Brief{Topic: "widgets"})

	done := make(chan struct{})
	go func() {
		w.Process(ctx, job)
		close(done)
	}()
	for gen.calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
	if s := job.Snapshot().Status; s != StatusFailed {
		t.Errorf("status = %q, want failed", s)
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	gen := &fakeGen{results: []genResult{{deltas: []string{reportText}}}}
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, MaxJobs: 10, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, gen, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("u1", generate.Brief{Topic: "widgets"})
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("submitted job not registered")
	}

	deadline := time.After(2 * time.Second)
	for {
		wake := job.Watch()
		if job.Snapshot().Status.Terminal() {
			break
		}
		select {
		case <-wake:
		case <-deadline:
			t.Fatalf("job stuck in %q", job.Snapshot().Status)
		}
	}
	if s := job.Snapshot().Status; s != StatusCompleted {
		t.Errorf("status = %q, want completed", s)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 0, MaxQueueSize: 1, MaxJobs: 10, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, &fakeGen{results: []genResult{{}}}, nil, testLogger())

	if err := o.Submit(NewJob("u1", generate.Brief{Topic: "a"})); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("u1", generate.Brief{Topic: "b"})
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := second.Snapshot().Status; s != StatusFailed {
		t.Errorf("rejected job status = %q", s)
	}
	if o.QueueDepth() != 1 || o.JobCount() != 2 {
		t.Errorf("depth = %d, jobs = %d", o.QueueDepth(), o.JobCount())
	}
}
