package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/seolens/internal/present"
	"github.com/dgallion1/seolens/internal/reportstore"
	"github.com/go-chi/chi/v5"
)

// reportUser checks the store is configured and user_id is present,
// answering the error itself.
func (s *Server) reportUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.reports == nil {
		jsonError(w, "report store not configured", http.StatusServiceUnavailable)
		return "", false
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

// handleListReports lists all stored reports for a user.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.reportUser(w, r)
	if !ok {
		return
	}
	list, err := s.reports.ListReports(r.Context(), userID)
	if err != nil {
		jsonError(w, "failed to list reports: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"reports": list})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.reportUser(w, r)
	if !ok {
		return
	}
	rep, err := s.reports.GetReport(r.Context(), userID, chi.URLParam(r, "reportID"))
	if errors.Is(err, reportstore.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load report: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report": rep.Summary,
		"view":   present.Build(*rep.Document),
	})
}

// handleDeleteReport deletes a report and all its nodes.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.reportUser(w, r)
	if !ok {
		return
	}
	reportID := chi.URLParam(r, "reportID")
	err := s.reports.DeleteReport(r.Context(), userID, reportID)
	if errors.Is(err, reportstore.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete report: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": reportID})
}
