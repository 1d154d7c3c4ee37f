package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/sections"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("u1", generate.Brief{Topic: "widgets"})
	b := NewJob("u1", generate.Brief{Topic: "widgets"})

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if got := a.Snapshot().Title; got != "widgets" {
		t.Errorf("expected title from topic, got %q", got)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusChunking, "chunking"},
		{StatusGenerating, "generating"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{StatusQueued, false},
		{StatusGenerating, false},
		{StatusStoring, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusPartial, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test"}
	job.AddError("attempt 1 overloaded")
	job.AddError("attempt 2 overloaded")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "attempt 1 overloaded" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	snap := (&Job{ID: "snap-test"}).Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJob_SnapshotIsACopy(t *testing.T) {
	job := &Job{ID: "copy"}
	job.AddError("one")
	job.SetSections(sections.Extract("SECTION 1: BASIC METADATA\nPAGE TITLE: Hi\n"))

	snap := job.Snapshot()
	snap.Progress.Errors[0] = "changed"
	snap.Progress.Sections[sections.Metadata] = 99

	again := job.Snapshot()
	if again.Progress.Errors[0] != "one" {
		t.Error("snapshot errors alias job state")
	}
	if again.Progress.Sections[sections.Metadata] != 1 {
		t.Errorf("snapshot sections alias job state: %d", again.Progress.Sections[sections.Metadata])
	}
	if !again.Progress.Structured {
		t.Error("expected structured report")
	}
}

func TestJob_TextFrom(t *testing.T) {
	job := &Job{ID: "text"}
	job.BeginAttempt()

	var cur Cursor
	job.AppendText("Hello, ")
	got, cur, reset := job.TextFrom(cur)
	if got != "Hello, " || reset {
		t.Fatalf("first read = %q reset=%v", got, reset)
	}

	job.AppendText("world")
	job.AppendText("")
	got, cur, reset = job.TextFrom(cur)
	if got != "world" || reset {
		t.Fatalf("second read = %q reset=%v", got, reset)
	}

	got, _, _ = job.TextFrom(cur)
	if got != "" {
		t.Errorf("expected nothing new, got %q", got)
	}
	if job.Text() != "Hello, world" {
		t.Errorf("Text() = %q", job.Text())
	}
	if snap := job.Snapshot(); snap.Progress.Chars != len("Hello, world") || snap.Progress.Attempts != 1 {
		t.Errorf("progress = %+v", snap.Progress)
	}
}

func TestJob_TextFromAfterRetry(t *testing.T) {
	job := &Job{ID: "retry"}
	job.BeginAttempt()
	job.AppendText("partial answer that is long")

	_, cur, _ := job.TextFrom(Cursor{})

	job.BeginAttempt()
	job.AppendText("fresh answer that grew even longer than before")

	got, next, reset := job.TextFrom(cur)
	if !reset {
		t.Fatal("expected reset after a new attempt")
	}
	if got != "fresh answer that grew even longer than before" {
		t.Errorf("got %q", got)
	}
	if next.Gen != cur.Gen+1 || next.Offset != len(got) {
		t.Errorf("next cursor = %+v", next)
	}
	if snap := job.Snapshot(); snap.Progress.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", snap.Progress.Attempts)
	}
}

func TestJob_WatchWakesOnChange(t *testing.T) {
	job := &Job{ID: "watch"}
	w1 := job.Watch()
	w2 := job.Watch()

	select {
	case <-w1:
		t.Fatal("watch fired before any change")
	default:
	}

	job.AppendText("x")

	for i, w := range []<-chan struct{}{w1, w2} {
		select {
		case <-w:
		case <-time.After(time.Second):
			t.Fatalf("watcher %d was not woken", i)
		}
	}

	w3 := job.Watch()
	select {
	case <-w3:
		t.Fatal("new watch channel should not be closed yet")
	default:
	}
	job.SetStatus(StatusCompleted, "done")
	select {
	case <-w3:
	case <-time.After(time.Second):
		t.Fatal("status change did not wake watcher")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	if job.FileData() != nil {
		t.Fatal("expected no file data")
	}
	job.SetFileData("page.html", []byte("<p>hi</p>"))
	if string(job.FileData()) != "<p>hi</p>" || job.Filename != "page.html" {
		t.Errorf("unexpected file data %q / %q", job.FileData(), job.Filename)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(10, time.Hour)
	store.Put(&Job{ID: "store-1"})

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTL(t *testing.T) {
	store := NewJobStore(10, 50*time.Millisecond)
	store.Put(&Job{ID: "old"})

	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new"})

	if store.Get("old") != nil {
		t.Error("expected expired job to be gone")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive")
	}
}

func TestJobStore_EvictsOldest(t *testing.T) {
	store := NewJobStore(2, time.Hour)
	store.Put(&Job{ID: "a"})
	store.Put(&Job{ID: "b"})
	store.Put(&Job{ID: "c"})

	if store.Len() != 2 {
		t.Errorf("expected 2 jobs, got %d", store.Len())
	}
	if store.Get("a") != nil {
		t.Error("expected oldest job to be evicted")
	}
}
