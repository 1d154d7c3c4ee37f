package present

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dgallion1/seolens/internal/highlight"
)

// RenderText writes v for a terminal. Schema items are syntax highlighted
// when color is true.
func RenderText(w io.Writer, v View, color bool) error {
	if !v.Structured {
		_, err := io.WriteString(w, v.FullText+"\n")
		return err
	}
	for _, p := range v.Panels {
		if p.Tab == TabFullText {
			continue
		}
		if _, err := fmt.Fprintf(w, "== %s (%d) ==\n", p.Label, len(p.Items)); err != nil {
			return err
		}
		for _, it := range p.Items {
			if _, err := fmt.Fprintf(w, "\n[%s]\n", it.Title); err != nil {
				return err
			}
			var err error
			if color && it.Tokens != nil {
				err = highlight.WriteANSI(w, it.Tokens)
			} else {
				_, err = io.WriteString(w, it.Content)
			}
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

var pageTmpl = template.Must(template.New("preview").Funcs(template.FuncMap{
	"tokens": func(ts []highlight.Token) template.HTML {
		// highlight.HTML escapes every token value.
		return template.HTML(highlight.HTML(ts))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;max-width:60rem}
nav a{margin-right:1rem}
pre{white-space:pre-wrap;background:#f6f8fa;padding:1rem}
.tok-string{color:#0a7f3f}.tok-key{color:#0550ae}.tok-url{color:#8250df;text-decoration:underline}
.tok-number{color:#b35900}.tok-keyword{color:#cf222e}.tok-bracket{font-weight:bold}.tok-punctuation{color:#6e7781}
</style>
</head>
<body>
{{- if .View.Structured}}
<nav>{{range .View.Panels}}<a href="#{{.Tab}}">{{.Label}}{{if ne .Tab "full_text"}} ({{len .Items}}){{end}}</a>{{end}}</nav>
{{- range .View.Panels}}
<section id="{{.Tab}}">
<h2>{{.Label}}</h2>
{{- if eq .Tab "full_text"}}
<pre>{{.CopyText}}</pre>
{{- else}}
{{- range .Items}}
<details{{if .Open}} open{{end}}>
<summary>{{.Title}}</summary>
{{- if .Tokens}}
<pre><code>{{tokens .Tokens}}</code></pre>
{{- else}}
<pre>{{.Content}}</pre>
{{- end}}
</details>
{{- end}}
{{- end}}
</section>
{{- end}}
{{- else}}
<pre>{{.View.FullText}}</pre>
{{- end}}
</body>
</html>
`))

// RenderHTML writes v as a standalone HTML page.
func RenderHTML(w io.Writer, title string, v View) error {
	if strings.TrimSpace(title) == "" {
		title = "SEO report"
	}
	return pageTmpl.Execute(w, struct {
		Title string
		View  View
	}{title, v})
}
