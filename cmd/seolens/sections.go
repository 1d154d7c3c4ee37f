package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/sections"
)

// Run executes the sections command.
func (c *SectionsCmd) Run(deps *Dependencies) error {
	raw, err := readInput(deps, c.File)
	if err != nil {
		return err
	}
	doc := sections.Extract(raw)
	deps.Log.Debug("extracted sections", "count", doc.Count(), "structured", doc.HasStructuredContent())

	return writeView(deps.Stdout, present.Build(doc), viewFormat{
		json:  c.JSON,
		html:  c.HTML,
		color: !c.NoColor,
		title: titleFor(c.File),
	})
}

type viewFormat struct {
	json, html, color bool
	title             string
}

func writeView(w io.Writer, v present.View, f viewFormat) error {
	switch {
	case f.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case f.html:
		return present.RenderHTML(w, f.title, v)
	}
	return present.RenderText(w, v, f.color)
}

func titleFor(file string) string {
	if file == "" || file == "-" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

// Run executes the copy command. The copied text goes to stdout and the
// notification to stderr.
func (c *CopyCmd) Run(deps *Dependencies) error {
	cat, ok := present.ParseCategory(c.Category)
	if !ok {
		return fmt.Errorf("unknown category %q", c.Category)
	}
	raw, err := readInput(deps, c.File)
	if err != nil {
		return err
	}

	p := present.New(sections.Extract(raw), present.StreamNotifier{Clipboard: deps.Stdout, Messages: deps.Stderr}, deps.Log)
	if c.Title == "" {
		return p.CopyCategory(deps.Ctx, cat)
	}
	return p.CopySection(deps.Ctx, cat, c.Title)
}
