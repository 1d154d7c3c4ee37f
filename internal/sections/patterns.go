package sections

import (
	"regexp"
	"strings"
)

// emoji matches one pictograph code point, including the variation
// selector, joiner and keycap combiners that follow some of them.
const emoji = `[\p{So}\x{FE0F}\x{200D}\x{20E3}]`

// deco matches the decoration an LLM tends to put in front of a header or
// label: markdown heading marks, list bullets, bold/italic markers, emoji
// and numbering (including keycap digits such as 1️⃣).
const deco = `(?:[#>|=*_~•+\-][ \t]*|` + emoji + `[ \t]*|\d\x{FE0F}?\x{20E3}[ \t]*|\d+[.)][ \t]*)*`

// lineLead anchors a pattern at a line start.
const lineLead = `(?im)^[ \t]*` + deco

// inlineLead matches a label later on a line, taking any "|" or ";"
// separator with it so the previous field does not end in one.
const inlineLead = `(?:[ \t]*[|;])?[ \t]*(?:[*_]+[ \t]*)?\b`

// sep is the explicit separator between a label and its content.
const sep = `(?::[ \t]*\**|[\-–—](?:[ \t]|$))`

// tail matches what may sit between a field label and its separator:
// closing bold and an optional parenthetical hint.
const tail = `[ \t]*\**[ \t]*(?:\([^)\n]*\)[ \t]*)?\**[ \t]*`

// header compiles a section header pattern. A header opens a line or
// follows an emoji anywhere on one. The match stops after the header
// words and any closing bold or colon, so text later on the same line
// belongs to the block.
func header(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)(?:^[ \t]*` + deco + `|` + emoji + `[ \t]*` + deco + `)` +
		`(?:` + words + `)(?:[ \t]*[*_]+)?(?:[ \t]*:)?`)
}

// bareSection is a numbered header with nothing but a separator or the
// line end after it, so prose such as "Section 2 of this page" is not
// taken for one.
func bareSection(n string) string {
	return `SECTION[ \t]+` + n + `\b[ \t]*[*_]*[ \t]*(?:[:)\-–—]|$)`
}

// section matches "SECTION n", "SECTION n: NAME" or just "NAME".
func section(n, name string) string {
	return `SECTION[ \t]+` + n + `\b[ \t]*[:.)\-–—]?[ \t]*[*_]*[ \t]*(?:` + emoji + `[ \t]*)*(?:` + name + `)` +
		`|` + bareSection(n) + `|(?:` + name + `)`
}

// marker compiles a bare line-leading keyword.
func marker(words string) *regexp.Regexp {
	return regexp.MustCompile(lineLead + `(?:` + words + `)\b`)
}

// label compiles a field label; the match ends where the field content
// starts. A label opening a line may stand alone on it. Labels later on a
// line need an explicit separator.
func label(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)(?:^[ \t]*` + deco + `(?:` + words + `)` + tail + `(?:` + sep + `|$)` +
		`|` + inlineLead + `(?:` + words + `)` + tail + sep + `)`)
}

// priority compiles the label of the n-th content optimization priority.
// The field name after the number is optional.
func priority(n, name string) *regexp.Regexp {
	return regexp.MustCompile(lineLead + `PRIORITY[ \t]*#?` + n + `\b[ \t]*[:.)\-–—]?[ \t]*` +
		`(?:\**[ \t]*(?:` + name + `)[ \t]*\**[ \t]*(?:\([^)\n]*\)[ \t]*)?)?\**[ \t]*:?[ \t]*\**`)
}

var (
	metadataHeader     = header(section("1", `BASIC[ \t]+METADATA`))
	schemaHeader       = header(section("2", `ADVANCED[ \t]+SCHEMA`))
	optimizationHeader = header(section("3", `CONTENT[ \t]+OPTIMIZATION`))
	aiTargetsHeader    = header(section("4", `AI[ \t\-]+(?:SEARCH[ \t]+)?TARGETS?`))
	issuesHeader       = header(`ISSUES\b[^\n]*RECOMMENDATIONS`)
	anySectionHeader   = header(bareSection(`\d+`))

	anyPriority     = marker(`PRIORITY[ \t]*#?\d+`)
	priorityEnd     = marker(`OUTPUT|SECTION|IMPLEMENTATION|EXPECTED`)
	implementation  = marker(`IMPLEMENTATION|PROJECTED|EXPECTED`)
	fencedCodeBlock = regexp.MustCompile("(?is)```[ \\t]*(?:html|json(?:-?ld)?)?[ \\t]*\\n?(.*?)```")
)

// sectionHeaders ends any category block.
var sectionHeaders = matcher{
	metadataHeader,
	schemaHeader,
	optimizationHeader,
	aiTargetsHeader,
	issuesHeader,
	anySectionHeader,
}

// field is one row of the extraction table.
type field struct {
	title   string
	pattern *regexp.Regexp
}

var metadataFields = []field{
	{TitlePageTitle, label(`PAGE[ \t]+TITLE|SEO[ \t]+TITLE|TITLE[ \t]+TAG`)},
	{TitleMetaDescription, label(`META[ \t]+DESCRIPTION`)},
	{TitleKeywordsAndTags, label(`KEYWORDS?[ \t]*(?:AND|&|/)[ \t]*TAGS?`)},
	{TitlePrimaryKeywords, label(`PRIMARY[ \t]+KEYWORDS?`)},
	{TitleLongTailKeywords, label(`LONG[ \t\-]*TAIL[ \t]+KEYWORDS?`)},
	{TitleConversationalQueries, label(`CONVERSATIONAL[ \t]+(?:QUERIES|QUESTIONS|KEYWORDS)`)},
	{TitleSemanticEntities, label(`SEMANTIC[ \t]+ENTIT(?:Y|IES)`)},
	{TitleSearchIntent, label(`SEARCH[ \t]+INTENT(?:[ \t]+CLASSIFICATION)?`)},
}

var optimizationFields = []field{
	{TitleFAQ, priority("1", `FAQ(?:[ \t]+SECTIONS?)?`)},
	{TitleNumericData, priority("2", `NUMERIC[ \t]+DATA(?:[ \t]+CALLOUTS?)?`)},
	{TitleComparisonTables, priority("3", `COMPARISON[ \t]+TABLES?`)},
	{TitleHeadingOptimization, priority("4", `HEADING[ \t]+(?:OPTIMIZATION|STRUCTURE)`)},
	{TitleStructuredLists, priority("5", `STRUCTURED[ \t]+LISTS?`)},
	{TitleAuthoritySignals, priority("6", `AUTHORITY[ \t]+SIGNALS?`)},
	{TitleInternalLinking, priority("7", `INTERNAL[ \t]+LINKING`)},
}

var aiTargetFields = []field{
	{TitleFeaturedSnippets, label(`FEATURED[ \t]+SNIPPETS?`)},
	{TitleGoogleAIOverview, label(`(?:GOOGLE[ \t]+)?AI[ \t]+OVERVIEWS?`)},
	{TitleChatGPTClaude, label(`CHATGPT(?:[ \t]*(?:AND|&|/|,)[ \t]*CLAUDE)?`)},
	{TitlePerplexity, label(`PERPLEXITY(?:[ \t]*(?:AND|&|/|,)[ \t]*(?:OTHER[ \t]+)?AI[ \t]+SEARCH)?`)},
	{TitleVoiceSearch, label(`VOICE[ \t]+SEARCH`)},
}

func patternsOf(fields []field) matcher {
	m := make(matcher, 0, len(fields))
	for _, f := range fields {
		m = append(m, f.pattern)
	}
	return m
}

// span is a half-open byte range of the raw text.
type span struct {
	start, end int
}

// matcher is a set of patterns searched together.
type matcher []*regexp.Regexp

// next returns the earliest match of any pattern that starts at or after
// from and ends at or before to. The search window opens at the start of
// from's line, so patterns anchored with ^ only match at real line starts
// and inline patterns can see the character before from.
func (m matcher) next(text string, from, to int) (span, bool) {
	if from > to {
		return span{}, false
	}
	base := strings.LastIndexByte(text[:from], '\n') + 1
	window := text[base:to]

	best := span{start: -1}
	for _, re := range m {
		for _, loc := range re.FindAllStringIndex(window, -1) {
			start := base + loc[0]
			if start < from {
				continue
			}
			if best.start < 0 || start < best.start {
				best = span{start: start, end: base + loc[1]}
			}
			break
		}
	}
	return best, best.start >= 0
}

// nextStart is next reduced to a boundary offset: the start of the
// earliest match, or to when nothing matches.
func (m matcher) nextStart(text string, from, to int) int {
	if s, ok := m.next(text, from, to); ok {
		return s.start
	}
	return to
}
