package generate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Brief describes the page a report is generated for.
type Brief struct {
	PageTitle string   `json:"page_title,omitempty"`
	URL       string   `json:"url,omitempty"`
	Topic     string   `json:"topic,omitempty"`
	Audience  string   `json:"audience,omitempty"`
	Tone      string   `json:"tone,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Label names the brief for humans: its title, else its topic.
func (b Brief) Label() string {
	if b.PageTitle != "" {
		return b.PageTitle
	}
	return b.Topic
}

const maxKeywords = 20

var fieldLimits = map[string]int{
	"page_title": 200,
	"url":        2048,
	"topic":      500,
	"audience":   200,
	"tone":       50,
	"notes":      4000,
	"keyword":    100,
}

// ValidationError reports the first invalid brief field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|` +
		`new\s+instructions|disregard\s+(the|all|previous))`,
)

// ValidateBrief normalizes b in place and checks it. Whitespace is
// trimmed, keywords are deduplicated case-insensitively and blank
// keywords dropped.
func ValidateBrief(b *Brief) error {
	if b == nil {
		return &ValidationError{Field: "brief", Reason: "missing"}
	}
	fields := []struct {
		name string
		val  *string
	}{
		{"page_title", &b.PageTitle},
		{"url", &b.URL},
		{"topic", &b.Topic},
		{"audience", &b.Audience},
		{"tone", &b.Tone},
		{"notes", &b.Notes},
	}
	for _, f := range fields {
		*f.val = strings.TrimSpace(*f.val)
		if err := checkText(f.name, *f.val); err != nil {
			return err
		}
	}
	if b.PageTitle == "" && b.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "topic or page_title is required"}
	}
	if b.URL != "" {
		u, err := url.Parse(b.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
		}
	}

	seen := make(map[string]bool, len(b.Keywords))
	kws := b.Keywords[:0]
	for _, kw := range b.Keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		if err := checkText("keyword", kw); err != nil {
			return err
		}
		seen[key] = true
		kws = append(kws, kw)
	}
	if len(kws) > maxKeywords {
		return &ValidationError{Field: "keywords", Reason: fmt.Sprintf("at most %d allowed", maxKeywords)}
	}
	b.Keywords = kws
	return nil
}

func checkText(field, v string) error {
	if len(v) > fieldLimits[field] {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("longer than %d bytes", fieldLimits[field])}
	}
	if injectionPattern.MatchString(v) {
		return &ValidationError{Field: field, Reason: "contains instructions aimed at the model"}
	}
	return nil
}

// SplitKeywords splits a comma or newline separated list.
func SplitKeywords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL/path-safe slug of at most 50 bytes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
