// Package present turns an extracted report into a tabbed, copyable view.
package present

import (
	"errors"
	"strings"

	"github.com/dgallion1/seolens/internal/highlight"
	"github.com/dgallion1/seolens/internal/sections"
)

// Tab identifies one tab of the structured view.
type Tab string

const (
	TabMetadata     Tab = "metadata"
	TabSchema       Tab = "schema"
	TabOptimization Tab = "optimization"
	TabAITargets    Tab = "ai_targets"
	TabFullText     Tab = "full_text"
)

var tabLabels = map[Tab]string{
	TabMetadata:     "Metadata",
	TabSchema:       "Schema",
	TabOptimization: "Content Optimization",
	TabAITargets:    "AI Targets",
	TabFullText:     "Full Text",
}

// Label is the human-readable tab name.
func (t Tab) Label() string {
	return tabLabels[t]
}

var categoryTabs = map[sections.Category]Tab{
	sections.Metadata:     TabMetadata,
	sections.Schema:       TabSchema,
	sections.Optimization: TabOptimization,
	sections.AITargets:    TabAITargets,
}

// ErrNotFound is returned when a copy target does not exist in the report.
var ErrNotFound = errors.New("section not found")

// Item is one collapsible section inside a panel. Tokens is set only for
// schema items.
type Item struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Open    bool              `json:"open"`
	Tokens  []highlight.Token `json:"tokens,omitempty"`
}

// Panel is the content of one tab.
type Panel struct {
	Tab      Tab    `json:"tab"`
	Label    string `json:"label"`
	Items    []Item `json:"items"`
	CopyText string `json:"copy_text"`
}

// View is what a client renders. When Structured is false Panels is empty
// and FullText is shown as preformatted text.
type View struct {
	Structured bool    `json:"structured"`
	Panels     []Panel `json:"panels,omitempty"`
	FullText   string  `json:"full_text"`
}

// Build lays out doc as tabs. Metadata and optimization panels open only
// their first item; schema and AI target panels open every item.
func Build(doc sections.Document) View {
	v := View{
		Structured: doc.HasStructuredContent(),
		FullText:   doc.FullText,
	}
	if !v.Structured {
		return v
	}

	for _, c := range sections.Categories {
		secs := doc.Sections(c)
		tab := categoryTabs[c]
		p := Panel{
			Tab:      tab,
			Label:    tab.Label(),
			Items:    make([]Item, 0, len(secs)),
			CopyText: CategoryCopyText(secs),
		}
		openAll := c == sections.Schema || c == sections.AITargets
		for i, s := range secs {
			it := Item{
				Title:   s.Title,
				Content: s.Content,
				Open:    openAll || i == 0,
			}
			if c == sections.Schema {
				it.Tokens = highlight.Tokenize(s.Content)
			}
			p.Items = append(p.Items, it)
		}
		v.Panels = append(v.Panels, p)
	}

	v.Panels = append(v.Panels, Panel{
		Tab:      TabFullText,
		Label:    TabFullText.Label(),
		Items:    []Item{},
		CopyText: doc.FullText,
	})
	return v
}

// CategoryCopyText joins secs as "title:\ncontent" blocks separated by a
// blank line.
func CategoryCopyText(secs []sections.Section) string {
	blocks := make([]string, 0, len(secs))
	for _, s := range secs {
		blocks = append(blocks, s.Title+":\n"+s.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// CopyText returns the clipboard text for one section of category c, or
// for the whole category when title is empty.
func CopyText(doc sections.Document, c sections.Category, title string) (string, error) {
	secs := doc.Sections(c)
	if title == "" {
		if len(secs) == 0 {
			return "", ErrNotFound
		}
		return CategoryCopyText(secs), nil
	}
	for _, s := range secs {
		if strings.EqualFold(s.Title, title) {
			return s.Content, nil
		}
	}
	return "", ErrNotFound
}

// ParseCategory maps a category or tab name to a category.
func ParseCategory(name string) (sections.Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range sections.Categories {
		if name == string(c) || name == strings.ToLower(categoryTabs[c].Label()) {
			return c, true
		}
	}
	return "", false
}
