package present

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dgallion1/seolens/internal/sections"
)

// Notifier delivers clipboard writes and short user-facing messages.
type Notifier interface {
	Notify(message string)
	WriteClipboard(ctx context.Context, text string) error
}

// Presenter owns one extracted report and performs copy actions on it.
type Presenter struct {
	doc      sections.Document
	notifier Notifier
	log      *slog.Logger
}

func New(doc sections.Document, n Notifier, log *slog.Logger) *Presenter {
	if log == nil {
		log = slog.Default()
	}
	return &Presenter{doc: doc, notifier: n, log: log}
}

// View builds the tabbed view of the report.
func (p *Presenter) View() View {
	return Build(p.doc)
}

// CopySection copies the content of one section.
func (p *Presenter) CopySection(ctx context.Context, c sections.Category, title string) error {
	return p.copy(ctx, c, title, title)
}

// CopyCategory copies every section of c as one block of text.
func (p *Presenter) CopyCategory(ctx context.Context, c sections.Category) error {
	return p.copy(ctx, c, "", categoryTabs[c].Label())
}

// copy never retries. A failed write leaves nothing changed and is
// reported both to the user and to the caller.
func (p *Presenter) copy(ctx context.Context, c sections.Category, title, what string) error {
	text, err := CopyText(p.doc, c, title)
	if err != nil {
		p.notifier.Notify(fmt.Sprintf("Nothing to copy for %s", what))
		return fmt.Errorf("copy %s: %w", what, err)
	}
	if err := p.notifier.WriteClipboard(ctx, text); err != nil {
		p.log.Warn("clipboard write failed", "target", what, "error", err)
		p.notifier.Notify(fmt.Sprintf("Could not copy %s", what))
		return fmt.Errorf("copy %s: %w", what, err)
	}
	p.notifier.Notify(fmt.Sprintf("Copied %s", what))
	return nil
}

// StreamNotifier writes clipboard text to Clipboard and messages, one per
// line, to Messages. The CLI uses stdout and stderr.
type StreamNotifier struct {
	Clipboard io.Writer
	Messages  io.Writer
}

func (n StreamNotifier) Notify(message string) {
	fmt.Fprintln(n.Messages, message)
}

func (n StreamNotifier) WriteClipboard(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(n.Clipboard, text)
	return err
}

// Recorder keeps the last clipboard write and every message in memory.
type Recorder struct {
	mu       sync.Mutex
	text     string
	messages []string
}

func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *Recorder) WriteClipboard(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	return nil
}

// Text returns the last text written to the clipboard.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

// Messages returns a copy of the notifications seen so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
