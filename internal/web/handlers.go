package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/go-chi/chi/v5"
)

// maxJobBody bounds the resource descriptor of a job request.
const maxJobBody = 1 << 20

// RunAccepted is the response to an asynchronous validation request.
type RunAccepted struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"runs":   s.dispatcher.Status(),
	})
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"checks": s.checks})
}

// handleRunValidation takes a resource descriptor and validates it. In sync
// mode the finished record is returned; in async mode the run is queued
// and 202 Accepted is returned.
func (s *Server) handleRunValidation(w http.ResponseWriter, r *http.Request) {
	var res catalog.Resource
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJobBody))
	if err := dec.Decode(&res); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
			Error:   fmt.Sprintf("invalid resource: %v", err),
			Message: "The request body is not a resource",
			Action:  "Send the resource as a JSON object",
			Code:    "REC002",
		})
		return
	}
	if res.ID == "" {
		s.respondError(w, r, errors.New("resource id is required"))
		return
	}

	logger := logging.WithFields(r.Context(), "resource_id", res.ID)

	if s.service.Mode() == core.UpdateSync {
		rec, err := s.dispatcher.Run(r.Context(), res)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, rec)
		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), res); err != nil {
		s.respondError(w, r, err)
		return
	}
	logger.Info("validation queued")
	writeJSONStatus(w, http.StatusAccepted, RunAccepted{ResourceID: res.ID, Status: "queued"})
}

func (s *Server) handleShowValidation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Show(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleDeleteValidation(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), chi.URLParam(r, "resourceID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
