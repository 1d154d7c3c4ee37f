package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/seolens/internal/chunker"
	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/parser"
	"github.com/dgallion1/seolens/internal/pipeline"
	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/sections"
)

// Run executes the generate command: the report streams as it is written,
// then its sections are printed.
func (c *GenerateCmd) Run(deps *Dependencies) error {
	var keywords []string
	for _, k := range c.Keywords {
		keywords = append(keywords, generate.SplitKeywords(k)...)
	}
	brief := generate.Brief{
		PageTitle: c.PageTitle,
		URL:       c.URL,
		Topic:     c.Topic,
		Audience:  c.Audience,
		Tone:      c.Tone,
		Keywords:  keywords,
		Notes:     c.Notes,
	}
	if err := generate.ValidateBrief(&brief); err != nil {
		return err
	}

	gen := deps.Generator
	if gen == nil {
		if c.APIKey == "" {
			fmt.Fprintln(deps.Stderr, "Hint: set ANTHROPIC_API_KEY or pass --api-key")
			return errors.New("ANTHROPIC_API_KEY not set")
		}
		client := generate.NewClaudeClient(c.APIKey, c.Model,
			generate.WithBaseURL(c.BaseURL),
			generate.WithMaxTokens(c.MaxTokens),
			generate.WithRateLimit(c.RPS),
		)
		defer client.Close()
		gen = client
	}

	job := pipeline.NewJob("", brief)
	if c.Source != "" {
		if !parser.IsSupported(c.Source) {
			return fmt.Errorf("unsupported source file type: %s", filepath.Ext(c.Source))
		}
		data, err := os.ReadFile(c.Source)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		job.SetFileData(filepath.Base(c.Source), data)
	}

	out := deps.Stdout
	if c.JSON {
		out = deps.Stderr
	}

	w := pipeline.NewWorker(gen, nil, deps.Log, chunker.DefaultConfig(), c.Budget, parser.Options{PDFFallback: true})
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Process(deps.Ctx, job)
	}()
	if err := follow(out, job, done); err != nil {
		return err
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusFailed:
		return fmt.Errorf("generation failed: %s", strings.Join(snap.Progress.Errors, "; "))
	case pipeline.StatusPartial:
		fmt.Fprintf(deps.Stderr, "warning: report is incomplete: %s\n", strings.Join(snap.Progress.Errors, "; "))
	}
	fmt.Fprintln(out)

	return writeView(deps.Stdout, present.Build(sections.Extract(job.Text())), viewFormat{
		json:  c.JSON,
		color: !c.NoColor,
	})
}

// follow copies the job's text to w as it streams until done is closed.
func follow(w io.Writer, job *pipeline.Job, done <-chan struct{}) error {
	var cur pipeline.Cursor
	drain := func() error {
		text, next, reset := job.TextFrom(cur)
		cur = next
		if reset {
			if _, err := io.WriteString(w, "\n\n[retrying]\n\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, text)
		return err
	}

	for {
		wake := job.Watch()
		if err := drain(); err != nil {
			return err
		}
		select {
		case <-done:
			return drain()
		case <-wake:
		}
	}
}
