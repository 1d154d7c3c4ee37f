// Package sections carves a generated SEO report into titled sections.
//
// Extraction is heuristic. Each category is found by its own pass over the
// full text, so sections from different categories may overlap. Text that
// does not follow the report layout simply yields empty categories.
package sections

import (
	"regexp"
	"strings"
	"unicode"
)

// Category groups sections for display.
type Category string

const (
	Metadata     Category = "metadata"
	Schema       Category = "schema"
	Optimization Category = "optimization"
	AITargets    Category = "ai_targets"
)

// Categories lists the categories in display order.
var Categories = []Category{Metadata, Schema, Optimization, AITargets}

// Section titles.
const (
	TitlePageTitle             = "Page Title"
	TitleMetaDescription       = "Meta Description"
	TitleKeywordsAndTags       = "Keywords and Tags"
	TitlePrimaryKeywords       = "Primary Keywords"
	TitleLongTailKeywords      = "Long-Tail Keywords"
	TitleConversationalQueries = "Conversational Queries"
	TitleSemanticEntities      = "Semantic Entities"
	TitleSearchIntent          = "Search Intent Classification"

	TitleSchema = "JSON-LD Schema"

	TitleFAQ                 = "FAQ Section"
	TitleNumericData         = "Numeric Data Callouts"
	TitleComparisonTables    = "Comparison Tables"
	TitleHeadingOptimization = "Heading Optimization"
	TitleStructuredLists     = "Structured Lists"
	TitleAuthoritySignals    = "Authority Signals"
	TitleInternalLinking     = "Internal Linking"

	TitleAISearchTargets  = "AI Search Targets"
	TitleFeaturedSnippets = "Featured Snippets"
	TitleGoogleAIOverview = "Google AI Overview"
	TitleChatGPTClaude    = "ChatGPT and Claude"
	TitlePerplexity       = "Perplexity and AI Search"
	TitleVoiceSearch      = "Voice Search"
	TitleIssues           = "Issues and Recommendations"
)

// Section is one titled piece of the raw text. Content is always
// raw[Start:End].
type Section struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
}

// Document is the categorized form of one generated report.
type Document struct {
	Metadata     []Section `json:"metadata"`
	Schema       []Section `json:"schema"`
	Optimization []Section `json:"optimization"`
	AITargets    []Section `json:"ai_targets"`
	FullText     string    `json:"full_text"`
}

// HasStructuredContent reports whether the metadata, schema or
// optimization pass found anything.
func (d Document) HasStructuredContent() bool {
	return len(d.Metadata) > 0 || len(d.Schema) > 0 || len(d.Optimization) > 0
}

// Sections returns the sections of one category.
func (d Document) Sections(c Category) []Section {
	switch c {
	case Metadata:
		return d.Metadata
	case Schema:
		return d.Schema
	case Optimization:
		return d.Optimization
	case AITargets:
		return d.AITargets
	}
	return nil
}

// Count returns the total number of sections across all categories.
func (d Document) Count() int {
	return len(d.Metadata) + len(d.Schema) + len(d.Optimization) + len(d.AITargets)
}

// Extract splits raw into categorized sections. It never fails; text that
// matches nothing produces a Document with empty categories.
func Extract(raw string) Document {
	return Document{
		Metadata:     extractMetadata(raw),
		Schema:       extractSchema(raw),
		Optimization: extractOptimization(raw),
		AITargets:    extractAITargets(raw),
		FullText:     raw,
	}
}

func extractMetadata(text string) []Section {
	b, ok := findBlock(text, metadataHeader, sectionHeaders)
	if !ok {
		return nil
	}
	return extractFields(text, b, Metadata, metadataFields, patternsOf(metadataFields))
}

func extractSchema(text string) []Section {
	b, ok := findBlock(text, schemaHeader, sectionHeaders)
	if !ok {
		return nil
	}
	loc := fencedCodeBlock.FindStringSubmatchIndex(text[b.start:b.end])
	if loc == nil {
		return nil
	}
	s, ok := newSection(text, TitleSchema, Schema, b.start+loc[2], b.start+loc[3])
	if !ok {
		return nil
	}
	return []Section{s}
}

func extractOptimization(text string) []Section {
	b, ok := findBlock(text, optimizationHeader, sectionHeaders)
	if !ok {
		return nil
	}
	ends := matcher{anyPriority, priorityEnd}
	return extractFields(text, b, Optimization, optimizationFields, ends)
}

func extractAITargets(text string) []Section {
	var out []Section

	if start, ok := (matcher{aiTargetsHeader}).next(text, 0, len(text)); ok {
		ends := append(matcher{implementation}, sectionHeaders...)
		end := ends.nextStart(text, start.end, len(text))
		if s, ok := newSection(text, TitleAISearchTargets, AITargets, start.start, end); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		ends := append(patternsOf(aiTargetFields), implementation)
		ends = append(ends, sectionHeaders...)
		for _, f := range aiTargetFields {
			lbl, ok := (matcher{f.pattern}).next(text, 0, len(text))
			if !ok {
				continue
			}
			end := ends.nextStart(text, lbl.end, len(text))
			if s, ok := newSection(text, f.title, AITargets, lbl.end, end); ok {
				out = append(out, s)
			}
		}
	}

	if start, ok := (matcher{issuesHeader}).next(text, 0, len(text)); ok {
		end := (matcher{implementation}).nextStart(text, start.end, len(text))
		if s, ok := newSection(text, TitleIssues, AITargets, start.start, end); ok {
			out = append(out, s)
		}
	}

	return out
}

// findBlock locates the region after the first match of head, up to the
// next match of ends or the end of text.
func findBlock(text string, head *regexp.Regexp, ends matcher) (span, bool) {
	h, ok := (matcher{head}).next(text, 0, len(text))
	if !ok {
		return span{}, false
	}
	return span{start: h.end, end: ends.nextStart(text, h.end, len(text))}, true
}

// extractFields captures each field of table inside block b. A field runs
// from the end of its label to the next match of ends.
func extractFields(text string, b span, c Category, table []field, ends matcher) []Section {
	var out []Section
	for _, f := range table {
		lbl, ok := (matcher{f.pattern}).next(text, b.start, b.end)
		if !ok {
			continue
		}
		end := ends.nextStart(text, lbl.end, b.end)
		if s, ok := newSection(text, f.title, c, lbl.end, end); ok {
			out = append(out, s)
		}
	}
	return out
}

// newSection trims whitespace off text[start:end]. Empty content is
// reported as no section.
func newSection(text, title string, c Category, start, end int) (Section, bool) {
	raw := text[start:end]
	start += len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	end -= len(raw) - len(strings.TrimRightFunc(raw, unicode.IsSpace))
	if start >= end {
		return Section{}, false
	}
	return Section{
		Title:    title,
		Content:  text[start:end],
		Category: c,
		Start:    start,
		End:      end,
	}, true
}
