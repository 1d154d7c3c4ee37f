package highlight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token for display.
type Kind int

const (
	Text Kind = iota
	String
	Key
	URL
	Number
	Keyword
	Bracket
	Punctuation
	Whitespace
)

var kindNames = [...]string{
	Text:        "text",
	String:      "string",
	Key:         "key",
	URL:         "url",
	Number:      "number",
	Keyword:     "keyword",
	Bracket:     "bracket",
	Punctuation: "punctuation",
	Whitespace:  "whitespace",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "text"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token kind %q", b)
}

// Token is a classified slice of the scanned input.
type Token struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

var (
	scriptTagRe = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
	stringRe    = regexp.MustCompile(`^"(?:[^"\\]|\\[\s\S])*"`)
	keyTailRe   = regexp.MustCompile(`^\s*:`)
	urlRe       = regexp.MustCompile(`^"https?://`)
	numberRe    = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)
	keywordRe   = regexp.MustCompile(`^(?:true|false|null)\b`)
)

// Prepare strips <script> wrapper tags and, when the remainder is valid
// JSON, re-indents it with two spaces. Anything else is returned trimmed.
// Values are re-indented, not normalised: 1.0 and 1e2 keep their spelling.
func Prepare(code string) string {
	clean := strings.TrimSpace(scriptTagRe.ReplaceAllString(code, ""))
	if !json.Valid([]byte(clean)) {
		return clean
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(clean), "", "  "); err != nil {
		return clean
	}
	return buf.String()
}

// Tokenize prepares code and returns its tokens in document order.
func Tokenize(code string) []Token {
	return slices.Collect(Tokens(code))
}

// Tokens is the lazy form of Tokenize. The sequence can be ranged over
// any number of times.
func Tokens(code string) iter.Seq[Token] {
	return Scan(Prepare(code))
}

// Scan tokenizes s as-is, without the Prepare step. Concatenating the
// values of the yielded tokens reproduces s exactly.
func Scan(s string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for rest := s; rest != ""; {
			tok := next(rest)
			if !yield(tok) {
				return
			}
			rest = rest[len(tok.Value):]
		}
	}
}

// next applies the rules in priority order to the head of rest.
func next(rest string) Token {
	if m := stringRe.FindString(rest); m != "" {
		switch {
		case keyTailRe.MatchString(rest[len(m):]):
			return Token{Kind: Key, Value: m}
		case urlRe.MatchString(m):
			return Token{Kind: URL, Value: m}
		default:
			return Token{Kind: String, Value: m}
		}
	}
	if m := numberRe.FindString(rest); m != "" {
		return Token{Kind: Number, Value: m}
	}
	if m := keywordRe.FindString(rest); m != "" {
		return Token{Kind: Keyword, Value: m}
	}
	switch rest[0] {
	case '[', ']', '{', '}':
		return Token{Kind: Bracket, Value: rest[:1]}
	case ',', ':':
		return Token{Kind: Punctuation, Value: rest[:1]}
	}
	if n := spaceRun(rest); n > 0 {
		return Token{Kind: Whitespace, Value: rest[:n]}
	}
	_, size := utf8.DecodeRuneInString(rest)
	return Token{Kind: Text, Value: rest[:size]}
}

// spaceRun returns the byte length of the leading whitespace in s.
func spaceRun(s string) int {
	return len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
}
