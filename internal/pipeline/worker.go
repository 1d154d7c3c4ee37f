package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/seolens/internal/chunker"
	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/parser"
	"github.com/dgallion1/seolens/internal/reportstore"
	"github.com/dgallion1/seolens/internal/sections"
)

// Generator streams a report for a prompt.
type Generator interface {
	Stream(ctx context.Context, p generate.Prompt, onDelta func(string)) (string, error)
	Model() string
}

// ReportSaver persists finished reports.
type ReportSaver interface {
	SaveReport(ctx context.Context, r reportstore.Report) error
}

// Worker processes a single generation job.
type Worker struct {
	gen        Generator
	store      ReportSaver
	log        *slog.Logger
	chunkCfg   chunker.Config
	budget     int
	parserOpts parser.Options

	backoff func(attempt int) time.Duration
}

// NewWorker builds a worker. store may be nil, in which case reports are
// not persisted. budget caps the source tokens quoted in the prompt.
func NewWorker(gen Generator, store ReportSaver, log *slog.Logger, chunkCfg chunker.Config, budget int, opts parser.Options) *Worker {
	return &Worker{
		gen:        gen,
		store:      store,
		log:        log,
		chunkCfg:   chunkCfg,
		budget:     budget,
		parserOpts: opts,
		backoff:    Backoff,
	}
}

// Process runs the full generation pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID)

	src, ok := w.source(job, log)
	if !ok {
		return
	}
	prompt := generate.BuildPrompt(job.Brief, src)

	job.SetStatus(StatusGenerating, "generating")
	start := time.Now()
	text, err := w.generate(ctx, job, prompt, log)
	if err != nil {
		log.Error("generation failed", "error", err, "attempts", job.Snapshot().Progress.Attempts)
		job.AddError(fmt.Sprintf("generate: %s", err))
		if partial := job.Text(); partial != "" {
			job.SetSections(sections.Extract(partial))
			job.SetStatus(StatusPartial, "generating")
			return
		}
		job.SetStatus(StatusFailed, "generating")
		return
	}
	if job.Text() == "" {
		job.AppendText(text)
	}

	doc := sections.Extract(text)
	job.SetSections(doc)
	log.Info("generation complete",
		"chars", len(text),
		"sections", doc.Count(),
		"structured", doc.HasStructuredContent(),
		"duration", time.Since(start),
	)

	if w.store == nil || job.UserID == "" {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusStoring, "storing")
	label := job.Brief.Label()
	err = w.store.SaveReport(ctx, reportstore.Report{
		Summary: reportstore.Summary{
			ID:        job.ID,
			UserID:    job.UserID,
			Title:     label,
			Slug:      generate.Slugify(label),
			URL:       job.Brief.URL,
			Model:     w.gen.Model(),
			Source:    job.Filename,
			CreatedAt: job.CreatedAt.UTC(),
		},
		Text: text,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusPartial, "storing")
		return
	}
	job.SetStored()
	job.SetStatus(StatusCompleted, "done")
}

// source parses and chunks the job's source document. A job without one
// yields a nil source.
func (w *Worker) source(job *Job, log *slog.Logger) (*generate.Source, bool) {
	data := job.FileData()
	if data == nil {
		return nil, true
	}

	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return nil, false
	}
	tree, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return nil, false
	}
	job.SetContentHash(ContentHashHex([]byte(tree.Text())))

	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkTree(tree, w.chunkCfg)
	fitted := chunker.Fit(chunks, w.budget)
	job.SetChunks(len(chunks), len(fitted))
	log.Info("chunked source", "chunks", len(chunks), "used", len(fitted))

	if len(chunks) == 0 && tree.Meta.Empty() {
		job.AddError("source has no extractable content")
	}
	return &generate.Source{Title: tree.Title, Meta: tree.Meta, Chunks: fitted}, true
}

// generate streams the report into the job, retrying transient failures.
// Each retry starts over with empty text.
func (w *Worker) generate(ctx context.Context, job *Job, prompt generate.Prompt, log *slog.Logger) (string, error) {
	var lastErr error
	for attempt := range MaxRetries {
		if attempt > 0 {
			d := w.backoff(attempt - 1)
			log.Warn("retryable generation error", "attempt", attempt, "backoff", d, "error", lastErr)
			if err := sleep(ctx, d); err != nil {
				return "", err
			}
		}
		job.BeginAttempt()
		text, err := w.gen.Stream(ctx, prompt, job.AppendText)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !generate.IsRetryable(err) {
			break
		}
	}
	return "", lastErr
}
