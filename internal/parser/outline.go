package parser

import (
	"strings"

	"github.com/dgallion1/seolens/internal/doctree"
)

// outline nests headings by level as a document is read top to bottom.
// Paragraphs attach to the most recent heading.
type outline struct {
	stack []entry
	text  strings.Builder
}

type entry struct {
	node  *doctree.DocNode
	level int
}

func newOutline() *outline {
	return &outline{stack: []entry{{node: &doctree.DocNode{}, level: 0}}}
}

func (o *outline) heading(level int, title string) {
	o.flush()
	n := &doctree.DocNode{Title: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, n)
	o.stack = append(o.stack, entry{node: n, level: level})
}

func (o *outline) paragraph(t string) {
	if t = strings.TrimSpace(t); t == "" {
		return
	}
	if o.text.Len() > 0 {
		o.text.WriteString("\n\n")
	}
	o.text.WriteString(t)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.text.String())
	o.text.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// nodes returns the top-level sections. Text before the first heading
// becomes a leading untitled node.
func (o *outline) nodes() []*doctree.DocNode {
	o.flush()
	root := o.stack[0].node
	if root.Text == "" {
		return root.Children
	}
	return append([]*doctree.DocNode{{Text: root.Text}}, root.Children...)
}
