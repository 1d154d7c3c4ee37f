package doctree

import "strings"

// DocTree is the root of a parsed source document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Meta     PageMeta   // SEO signals already present in the source
	Children []*DocNode // Top-level sections
}

// PageMeta holds the search signals an HTML source already carries. Other
// formats leave it empty.
type PageMeta struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    string   `json:"keywords,omitempty"`
	Canonical   string   `json:"canonical,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	JSONLD      []string `json:"json_ld,omitempty"`
}

// Empty reports whether no signal was found.
func (m PageMeta) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Keywords == "" &&
		m.Canonical == "" && len(m.Headings) == 0 && len(m.JSONLD) == 0
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page/line (0 if N/A)
	Children []*DocNode // Subsections
}

// Text flattens the tree into headings and paragraphs in document order.
func (t *DocTree) Text() string {
	var sb strings.Builder
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if n.Title != "" {
			sb.WriteString(n.Title)
			sb.WriteString("\n\n")
		}
		if n.Text != "" {
			sb.WriteString(n.Text)
			sb.WriteString("\n\n")
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range t.Children {
		walk(c)
	}
	return strings.TrimSpace(sb.String())
}

// Chunk is a sized text segment with structural context, ready to be
// quoted in a prompt.
type Chunk struct {
	Text       string   // Chunk text content
	Index      int      // Sequence number within document
	Breadcrumb []string // Heading hierarchy, e.g. ["Pricing", "Plans", "Team"]
	Tokens     int      // Estimated token count of Text
	PageStart  int
	PageEnd    int
}
