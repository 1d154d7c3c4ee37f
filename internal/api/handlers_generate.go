package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/parser"
	"github.com/dgallion1/seolens/internal/pipeline"
	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/sections"
	"github.com/go-chi/chi/v5"
)

const keepAliveInterval = 15 * time.Second

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	brief := generate.Brief{
		PageTitle: r.FormValue("page_title"),
		URL:       r.FormValue("url"),
		Topic:     r.FormValue("topic"),
		Audience:  r.FormValue("audience"),
		Tone:      r.FormValue("tone"),
		Keywords:  generate.SplitKeywords(r.FormValue("keywords")),
		Notes:     r.FormValue("notes"),
	}
	if err := generate.ValidateBrief(&brief); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(userID, brief)

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		jsonError(w, "invalid file: "+err.Error(), http.StatusBadRequest)
		return
	default:
		defer file.Close()
		filename := sanitizeFilename(header.Filename)
		if !parser.IsSupported(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		job.SetFileData(filename, data)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"status_url": fmt.Sprintf("/api/generate/%s/status", job.ID),
		"stream_url": fmt.Sprintf("/api/generate/%s/stream", job.ID),
	})
}

// jobFor resolves the {jobID} URL parameter, answering 404 itself.
func (s *Server) jobFor(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

type deltaEvent struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// handleGenerateStream follows a job as server-sent events: "reset" when a
// retry discards earlier text, "delta" for new text, "status" on every
// phase change, and finally "sections" with the presented view.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	log := s.log.With("job_id", job.ID)
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	var (
		cur  pipeline.Cursor
		last pipeline.JobSnapshot
	)
	for {
		wake := job.Watch()
		// Snapshot before reading text: a terminal status guarantees the
		// text read below is complete.
		snap := job.Snapshot()
		text, next, reset := job.TextFrom(cur)
		cur = next

		var err error
		if reset {
			err = writeSSE(w, "reset", map[string]int{"gen": cur.Gen})
		}
		if err == nil && text != "" {
			err = writeSSE(w, "delta", deltaEvent{Text: text, Offset: cur.Offset - len(text)})
		}
		if err == nil && (snap.Status != last.Status || snap.Phase != last.Phase) {
			err = writeSSE(w, "status", snap)
			last = snap
		}
		if err == nil && snap.Status.Terminal() {
			err = writeSSE(w, "sections", present.Build(sections.Extract(job.Text())))
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			log.Debug("stream closed", "error", err)
			return
		}
		if snap.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-wake:
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleGenerateSections(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": snap.ID,
		"status": snap.Status,
		"view":   present.Build(sections.Extract(job.Text())),
	})
}

func (s *Server) handleGeneratePreview(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	view := present.Build(sections.Extract(job.Text()))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := present.RenderHTML(w, job.Snapshot().Title, view); err != nil {
		s.log.Error("render preview", "job_id", job.ID, "error", err)
	}
}

type copyRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

// handleGenerateCopy returns the text a clipboard copy of one section, or a
// whole category when title is empty, would receive.
func (s *Server) handleGenerateCopy(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	var req copyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	c, ok := present.ParseCategory(req.Category)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown category %q", req.Category), http.StatusBadRequest)
		return
	}

	rec := &present.Recorder{}
	p := present.New(sections.Extract(job.Text()), rec, s.log.With("job_id", job.ID))
	var err error
	if strings.TrimSpace(req.Title) == "" {
		err = p.CopyCategory(r.Context(), c)
	} else {
		err = p.CopySection(r.Context(), c, req.Title)
	}
	if errors.Is(err, present.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"text":    rec.Text(),
		"message": strings.Join(rec.Messages(), "\n"),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
