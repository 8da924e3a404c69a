package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dshills/repolens/internal/github"
	"github.com/dshills/repolens/internal/review"
)

type gitURLRequest struct {
	GitURL string `json:"gitUrl"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "repolens API"})
}

func (s *Server) handleGitURL(w http.ResponseWriter, r *http.Request) {
	var req gitURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if req.GitURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Git URL is required"})
		return
	}
	repo, err := github.ParseRepoURL(req.GitURL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid GitHub URL", Details: err.Error()})
		return
	}

	batch, err := s.pipeline.Run(r.Context(), repo)
	if err != nil {
		msg, details := describeFailure(err)
		s.logger.WithFields(logrus.Fields{"repo": repo.String()}).WithError(err).Error(msg)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Details: details})
		return
	}
	if batch.Data == nil {
		batch.Data = []review.FileReview{}
	}
	writeJSON(w, http.StatusOK, batch)
}

// describeFailure maps a pipeline error to the stage message and the
// underlying cause.
func describeFailure(err error) (string, string) {
	var se *review.StageError
	if !errors.As(err, &se) {
		return "Internal server error", err.Error()
	}
	switch se.Stage {
	case review.StageFetchingTree:
		return "Failed to fetch repository tree", se.Err.Error()
	case review.StageSelectingFiles:
		return "Failed to select files for review", se.Err.Error()
	default:
		return "Internal server error", se.Err.Error()
	}
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repos, err := s.repos.ListRepos(r.Context(), owner)
	if err != nil {
		s.logger.WithField("owner", owner).WithError(err).Error("listing repositories failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to list repositories", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure can only be a
	// broken connection.
	_ = json.NewEncoder(w).Encode(v)
}
