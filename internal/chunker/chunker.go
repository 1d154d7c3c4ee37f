package chunker

import (
	"slices"
	"strings"

	"github.com/dgallion1/seolens/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns the defaults used for source documents. Web pages
// have many short sections, so MinChunk is low.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    800,
		ChunkOverlap: 80,
		MinChunk:     8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// ChunkTree walks a DocTree and produces structure-aware chunks.
func ChunkTree(tree *doctree.DocTree, cfg Config) []doctree.Chunk {
	cfg = cfg.withDefaults()
	w := &walker{cfg: cfg}
	for _, child := range tree.Children {
		w.visit(child, nil)
	}
	return w.chunks
}

type walker struct {
	cfg    Config
	chunks []doctree.Chunk
}

func (w *walker) visit(node *doctree.DocNode, parent []string) {
	bc := parent
	if node.Title != "" {
		bc = append(slices.Clip(parent), node.Title)
	}

	if node.Text != "" {
		parts := []string{node.Text}
		if EstimateTokens(node.Text) > w.cfg.ChunkSize {
			parts = splitText(node.Text, w.cfg.ChunkSize, w.cfg.ChunkOverlap)
		}
		for _, part := range parts {
			w.emit(part, bc, node.Page)
		}
	}

	for _, child := range node.Children {
		w.visit(child, bc)
	}
}

func (w *walker) emit(text string, bc []string, page int) {
	tokens := EstimateTokens(text)
	if tokens < w.cfg.MinChunk {
		return
	}
	w.chunks = append(w.chunks, doctree.Chunk{
		Text:       text,
		Index:      len(w.chunks),
		Breadcrumb: slices.Clone(bc),
		Tokens:     tokens,
		PageStart:  page,
		PageEnd:    page,
	})
}

// Fit returns the leading chunks whose combined size stays within budget
// tokens. A non-positive budget keeps everything.
func Fit(chunks []doctree.Chunk, budget int) []doctree.Chunk {
	if budget <= 0 {
		return chunks
	}
	used := 0
	for i, c := range chunks {
		n := c.Tokens
		if n == 0 {
			n = EstimateTokens(c.Text)
		}
		if used+n > budget {
			return chunks[:i]
		}
		used += n
	}
	return chunks
}

// splitText breaks text into chunks of approximately target tokens,
// carrying overlap tokens from the end of each chunk into the next.
func splitText(text string, target, overlap int) []string {
	b := &builder{target: target, overlap: overlap, sep: "\n\n"}
	for _, para := range splitByParagraphs(text) {
		if EstimateTokens(para) > target {
			b.flush(false)
			sb := &builder{target: target, overlap: overlap, sep: " "}
			for _, s := range splitSentences(para) {
				sb.add(s)
			}
			sb.flush(false)
			b.out = append(b.out, sb.out...)
			continue
		}
		b.add(para)
	}
	b.flush(false)
	return b.out
}

// builder accumulates pieces up to a token target.
type builder struct {
	target, overlap int
	sep             string
	cur             strings.Builder
	tokens          int
	out             []string
}

func (b *builder) add(piece string) {
	n := EstimateTokens(piece)
	if b.tokens > 0 && b.tokens+n > b.target {
		b.flush(true)
	}
	if b.cur.Len() > 0 {
		b.cur.WriteString(b.sep)
	}
	b.cur.WriteString(piece)
	b.tokens += n
}

func (b *builder) flush(carry bool) {
	if b.tokens == 0 {
		return
	}
	done := b.cur.String()
	b.out = append(b.out, done)
	b.cur.Reset()
	b.tokens = 0
	if !carry {
		return
	}
	if tail := overlapText(done, b.overlap); tail != "" {
		b.cur.WriteString(tail)
		b.tokens = EstimateTokens(tail)
	}
}

func splitByParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences ends a sentence at '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if c := text[i+1]; c == ' ' || c == '\n' || c == '\t' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// overlapText returns roughly the last n tokens of text.
func overlapText(text string, n int) string {
	words := strings.Fields(text)
	keep := int(float64(n) / tokensPerWord)
	if keep <= 0 || len(words) <= keep {
		return ""
	}
	return strings.Join(words[len(words)-keep:], " ")
}
