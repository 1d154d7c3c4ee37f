package present_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/seolens/internal/highlight"
	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/sections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `SECTION 1: BASIC METADATA
PAGE TITLE: Best Widget Co
META DESCRIPTION: Buy widgets
SECTION 2: ADVANCED SCHEMA
` + "```json\n{\"@type\":\"Organization\"}\n```" + `
SECTION 3: CONTENT OPTIMIZATION
PRIORITY 1: FAQ Section
Add questions.
PRIORITY 2: Numeric Data Callouts
Add numbers.
SECTION 4: AI SEARCH TARGETS
Be quotable.
`

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("structured report gets one panel per tab", func(t *testing.T) {
		t.Parallel()

		v := present.Build(sections.Extract(report))

		require.True(t, v.Structured)
		var tabs []present.Tab
		for _, p := range v.Panels {
			tabs = append(tabs, p.Tab)
		}
		assert.Equal(t, []present.Tab{
			present.TabMetadata,
			present.TabSchema,
			present.TabOptimization,
			present.TabAITargets,
			present.TabFullText,
		}, tabs)
		assert.Equal(t, "Content Optimization", v.Panels[2].Label)
		assert.Equal(t, report, v.Panels[4].CopyText)
	})

	t.Run("default open state", func(t *testing.T) {
		t.Parallel()

		v := present.Build(sections.Extract(report))

		meta := v.Panels[0].Items
		require.Len(t, meta, 2)
		assert.True(t, meta[0].Open)
		assert.False(t, meta[1].Open)

		opt := v.Panels[2].Items
		require.Len(t, opt, 2)
		assert.True(t, opt[0].Open)
		assert.False(t, opt[1].Open)

		for _, it := range v.Panels[1].Items {
			assert.True(t, it.Open)
		}
		for _, it := range v.Panels[3].Items {
			assert.True(t, it.Open)
		}
	})

	t.Run("only schema items carry tokens", func(t *testing.T) {
		t.Parallel()

		v := present.Build(sections.Extract(report))

		require.Len(t, v.Panels[1].Items, 1)
		assert.Equal(t, highlight.Tokenize(`{"@type":"Organization"}`), v.Panels[1].Items[0].Tokens)
		assert.Nil(t, v.Panels[0].Items[0].Tokens)
	})

	t.Run("unstructured text falls back to full text", func(t *testing.T) {
		t.Parallel()

		raw := "Just some advice.\nNo headers here."

		v := present.Build(sections.Extract(raw))

		assert.False(t, v.Structured)
		assert.Empty(t, v.Panels)
		assert.Equal(t, raw, v.FullText)
	})
}

func TestCategoryCopyText(t *testing.T) {
	t.Parallel()

	got := present.CategoryCopyText([]sections.Section{
		{Title: "Page Title", Content: "Best Widget Co"},
		{Title: "Meta Description", Content: "Buy widgets"},
	})

	assert.Equal(t, "Page Title:\nBest Widget Co\n\nMeta Description:\nBuy widgets", got)
	assert.Equal(t, "", present.CategoryCopyText(nil))
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]sections.Category{
		"metadata":             sections.Metadata,
		"Schema":               sections.Schema,
		"content optimization": sections.Optimization,
		"ai_targets":           sections.AITargets,
		" AI Targets ":         sections.AITargets,
	} {
		got, ok := present.ParseCategory(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := present.ParseCategory("full_text")
	assert.False(t, ok)
}

type failingClipboard struct {
	present.Recorder
}

func (f *failingClipboard) WriteClipboard(context.Context, string) error {
	return errors.New("permission denied")
}

func TestPresenter_Copy(t *testing.T) {
	t.Parallel()

	t.Run("section content goes to the clipboard", func(t *testing.T) {
		t.Parallel()

		rec := &present.Recorder{}
		p := present.New(sections.Extract(report), rec, nil)

		err := p.CopySection(context.Background(), sections.Metadata, "Page Title")

		require.NoError(t, err)
		assert.Equal(t, "Best Widget Co", rec.Text())
		assert.Equal(t, []string{"Copied Page Title"}, rec.Messages())
	})

	t.Run("category copy joins blocks", func(t *testing.T) {
		t.Parallel()

		rec := &present.Recorder{}
		p := present.New(sections.Extract(report), rec, nil)

		err := p.CopyCategory(context.Background(), sections.Optimization)

		require.NoError(t, err)
		assert.Equal(t, "FAQ Section:\nAdd questions.\n\nNumeric Data Callouts:\nAdd numbers.", rec.Text())
	})

	t.Run("unknown section is not found", func(t *testing.T) {
		t.Parallel()

		rec := &present.Recorder{}
		p := present.New(sections.Extract(report), rec, nil)

		err := p.CopySection(context.Background(), sections.Metadata, "Nope")

		require.ErrorIs(t, err, present.ErrNotFound)
		assert.Equal(t, "", rec.Text())
		assert.Len(t, rec.Messages(), 1)
	})

	t.Run("clipboard failure is notified and returned", func(t *testing.T) {
		t.Parallel()

		fc := &failingClipboard{}
		p := present.New(sections.Extract(report), fc, nil)

		err := p.CopySection(context.Background(), sections.Metadata, "Page Title")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
		assert.Equal(t, []string{"Could not copy Page Title"}, fc.Messages())
		assert.Equal(t, "", fc.Text())
	})

	t.Run("stream notifier splits clipboard and messages", func(t *testing.T) {
		t.Parallel()

		var clip, msgs bytes.Buffer
		p := present.New(sections.Extract(report), present.StreamNotifier{Clipboard: &clip, Messages: &msgs}, nil)

		err := p.CopySection(context.Background(), sections.Metadata, "meta description")

		require.NoError(t, err)
		assert.Equal(t, "Buy widgets", clip.String())
		assert.Equal(t, "Copied meta description\n", msgs.String())
	})
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	t.Run("structured", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := present.RenderText(&buf, present.Build(sections.Extract(report)), false)

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "== Metadata (2) ==")
		assert.Contains(t, out, "[Page Title]\nBest Widget Co\n")
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("colored schema", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := present.RenderText(&buf, present.Build(sections.Extract(report)), true)

		require.NoError(t, err)
		assert.Contains(t, buf.String(), highlight.ANSI(highlight.Key))
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := present.RenderText(&buf, present.Build(sections.Extract("plain")), true)

		require.NoError(t, err)
		assert.Equal(t, "plain\n", buf.String())
	})
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	t.Run("tabs and collapsible items", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := present.RenderHTML(&buf, "Widgets", present.Build(sections.Extract(report)))

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<title>Widgets</title>")
		assert.Contains(t, out, `<a href="#metadata">Metadata (2)</a>`)
		assert.Contains(t, out, "<details open>\n<summary>Page Title</summary>")
		assert.Contains(t, out, "<details>\n<summary>Meta Description</summary>")
		assert.Contains(t, out, `<span class="tok-key">`)
	})

	t.Run("fallback escapes raw text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := present.RenderHTML(&buf, "", present.Build(sections.Extract("<b>hi</b>")))

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<pre>&lt;b&gt;hi&lt;/b&gt;</pre>")
		assert.False(t, strings.Contains(out, "<nav>"))
	})
}
