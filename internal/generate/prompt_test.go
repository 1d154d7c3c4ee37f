package generate

import (
	"strings"
	"testing"

	"github.com/dgallion1/seolens/internal/doctree"
	"github.com/dgallion1/seolens/internal/sections"
)

func TestBuildPrompt_BriefOnly(t *testing.T) {
	p := BuildPrompt(Brief{Topic: "Press kits", Keywords: []string{"press kit", "media kit"}}, nil)

	if p.System != ReportInstructions {
		t.Error("system prompt is not the report instructions")
	}
	want := "Page brief:\n- Topic: Press kits\n- Target keywords: press kit, media kit"
	if p.User != want {
		t.Errorf("User = %q, want %q", p.User, want)
	}
}

func TestBuildPrompt_WithSource(t *testing.T) {
	src := &Source{
		Title: "landing",
		Meta: doctree.PageMeta{
			Title:       "Acme",
			Description: "Old description",
			Headings:    []string{"H1: Press kits"},
			JSONLD:      []string{`{"@type":"Organization"}`},
		},
		Chunks: []doctree.Chunk{
			{Text: "First chunk.", Breadcrumb: []string{"Press kits", "Intro"}},
			{Text: "Second chunk."},
		},
	}

	p := BuildPrompt(Brief{PageTitle: "Acme"}, src)

	for _, want := range []string{
		"- Page title: Acme\n",
		"Current on-page signals:\n",
		`- meta description: "Old description"`,
		"- heading H1: Press kits",
		`- existing JSON-LD #1: {"@type":"Organization"}`,
		"Source document \"landing\":\n---\nSection: Press kits > Intro\nFirst chunk.\n---\nSecond chunk.\n---",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("prompt missing %q:\n%s", want, p.User)
		}
	}
}

func TestReportInstructions_UseExtractorLabels(t *testing.T) {
	doc := sections.Extract(ReportInstructions)

	if len(doc.Metadata) != 8 {
		t.Errorf("metadata labels recognised: %d, want 8", len(doc.Metadata))
	}
	if len(doc.Schema) != 0 {
		t.Errorf("instructions must not contain a complete code block")
	}
	titles := make([]string, 0, len(doc.AITargets))
	for _, s := range doc.AITargets {
		titles = append(titles, s.Title)
	}
	if strings.Join(titles, "|") != sections.TitleAISearchTargets+"|"+sections.TitleIssues {
		t.Errorf("AI target sections = %v", titles)
	}
}
