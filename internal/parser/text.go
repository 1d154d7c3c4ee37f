package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/seolens/internal/doctree"
)

// TextParser handles plain text. Blank lines separate paragraphs and each
// paragraph becomes one node.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := &doctree.DocTree{Title: titleFromName(filename)}
	var cur []string
	line := 0
	start := 0
	flush := func() {
		if len(cur) > 0 {
			tree.Children = append(tree.Children, &doctree.DocNode{
				Text: strings.Join(cur, "\n"),
				Page: start,
			})
			cur = cur[:0]
		}
	}
	for scanner.Scan() {
		line++
		l := scanner.Text()
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		if len(cur) == 0 {
			start = line
		}
		cur = append(cur, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	flush()
	return tree, nil
}
