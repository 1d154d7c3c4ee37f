package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dgallion1/seolens/internal/highlight"
	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/sections"
)

// readText reads a raw request body up to the upload limit, answering the
// error itself.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return "", false
	}
	return string(data), true
}

// handlePreview extracts and lays out report text posted by the client.
// ?format=html renders the tab page instead of JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	view := present.Build(sections.Extract(text))

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := present.RenderHTML(w, r.URL.Query().Get("title"), view); err != nil {
			s.log.Error("render preview", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	code, ok := s.readText(w, r)
	if !ok {
		return
	}
	tokens := highlight.Tokenize(code)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"tokens": tokens,
		"html":   highlight.HTML(tokens),
	})
}
