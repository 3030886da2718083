package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/careermatch/internal/board"
	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// ScoreRequest is the body of POST /api/presentation/score.
type ScoreRequest struct {
	JobTitle  string                 `json:"jobTitle"`
	Breakdown presentation.Breakdown `json:"breakdown"`
	// Mode overrides the configured score mode when set.
	Mode string `json:"mode,omitempty"`
}

// ScoreResponse is the presentable score for a job title.
type ScoreResponse struct {
	JobTitle string             `json:"jobTitle"`
	Mode     presentation.Mode  `json:"mode"`
	Scores   presentation.Score `json:"scores"`
}

// BoardItem is a job board listing with its display label.
type BoardItem struct {
	types.JobBoardItem
	WorkTypeLabel string `json:"workTypeLabel"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScore runs the presentation pipeline. It needs no backend and no session.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	n := s.normalizer
	if req.Mode != "" {
		mode, err := presentation.ParseMode(req.Mode)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
			return
		}
		n.Mode = mode
	}
	if n.Mode == "" {
		n.Mode = presentation.ModeRoll
	}

	s.jsonResponse(w, http.StatusOK, ScoreResponse{
		JobTitle: req.JobTitle,
		Mode:     n.Mode,
		Scores:   n.Normalize(req.JobTitle, req.Breakdown),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := dashboard.New(s.backend(r), s.dashboard).Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	v, err := dashboard.New(s.backend(r), s.dashboard).ExplainJob(r.Context(), jobID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	order, err := board.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "sort", Message: err.Error()})
		return
	}

	items, err := s.backend(r).JobBoard(r.Context(), order.String())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	board.Sort(items, order)

	out := make([]BoardItem, len(items))
	for i, it := range items {
		out[i] = BoardItem{JobBoardItem: it, WorkTypeLabel: board.WorkTypeLabel(it.WorkType)}
	}
	s.jsonResponse(w, http.StatusOK, out)
}
