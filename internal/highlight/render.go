package highlight

import (
	"html"
	"io"
	"strings"
)

// Class returns the CSS class used for kind in HTML output.
func Class(k Kind) string {
	return "tok-" + k.String()
}

var ansiColors = map[Kind]string{
	String:      "\x1b[32m",
	Key:         "\x1b[36m",
	URL:         "\x1b[34;4m",
	Number:      "\x1b[33m",
	Keyword:     "\x1b[35m",
	Bracket:     "\x1b[1m",
	Punctuation: "\x1b[2m",
}

const ansiReset = "\x1b[0m"

// ANSI returns the terminal escape sequence for kind, or "" for kinds
// that render unstyled.
func ANSI(k Kind) string {
	return ansiColors[k]
}

// HTML renders tokens as escaped <span> elements. Whitespace and plain
// text are emitted without a wrapper.
func HTML(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.Kind == Whitespace || t.Kind == Text {
			sb.WriteString(html.EscapeString(t.Value))
			continue
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(Class(t.Kind))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(t.Value))
		sb.WriteString(`</span>`)
	}
	return sb.String()
}

// WriteANSI writes tokens to w with terminal colours.
func WriteANSI(w io.Writer, tokens []Token) error {
	for _, t := range tokens {
		code := ANSI(t.Kind)
		var err error
		if code == "" {
			_, err = io.WriteString(w, t.Value)
		} else {
			_, err = io.WriteString(w, code+t.Value+ansiReset)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
