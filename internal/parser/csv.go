package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/seolens/internal/doctree"
)

// csvBatch is the number of data rows per node.
const csvBatch = 20

// CSVParser handles CSV files such as keyword exports. The first row is
// the header and every cell is labelled with its column.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: titleFromName(filename)}
	if len(records) == 0 {
		return tree, nil
	}
	headers, rows := records[0], records[1:]

	for i := 0; i < len(rows); i += csvBatch {
		end := min(i+csvBatch, len(rows))
		var sb strings.Builder
		sb.WriteString("Columns: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range rows[i:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			sb.WriteString(strings.Join(cells, ", "))
			sb.WriteString("\n")
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			// Line numbers are 1-based and skip the header.
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1),
			Text:  strings.TrimSpace(sb.String()),
			Page:  i + 2,
		})
	}
	return tree, nil
}
