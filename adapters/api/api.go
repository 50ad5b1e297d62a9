package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gokinet/app"
	"gokinet/domain/core"
	"gokinet/domain/kinetics"
	apperrors "gokinet/internal/errors"
)

// Handler serves the JSON API for kinetic analyses
type Handler struct {
	router  *chi.Mux
	service *app.AnalysisService
}

// NewHandler creates the API handler with its routes
func NewHandler(service *app.AnalysisService) *Handler {
	h := &Handler{
		router:  chi.NewRouter(),
		service: service,
	}

	h.router.Use(middleware.Logger)
	h.router.Use(middleware.Recoverer)

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/analyses", h.handleCreateAnalysis)
		r.Get("/analyses", h.handleListAnalyses)
		r.Get("/analyses/{id}", h.handleGetAnalysis)
		r.Delete("/analyses/{id}", h.handleDeleteAnalysis)
	})

	return h
}

// Router exposes the chi mux
func (h *Handler) Router() http.Handler {
	return h.router
}

// analysisRequest is the JSON payload for creating an analysis
type analysisRequest struct {
	SourceName  string    `json:"source_name"`
	Times       []float64 `json:"times"`
	Concs       []float64 `json:"concentrations"`
	InitialConc float64   `json:"initial_concentration"`
}

// fitResponse is the JSON shape of one fitted model
type fitResponse struct {
	Model        string  `json:"model"`
	RateConstant float64 `json:"rate_constant"`
	RSquared     float64 `json:"r_squared"`
	MAPE         float64 `json:"mape"`
}

// analysisResponse is the JSON shape of a completed analysis
type analysisResponse struct {
	ID            string      `json:"id"`
	SourceName    string      `json:"source_name"`
	PointCount    int         `json:"point_count"`
	SelectedCount int         `json:"selected_count"`
	BetterModel   string      `json:"better_model"`
	PFO           fitResponse `json:"pfo"`
	PSO           fitResponse `json:"pso"`
	CreatedAt     string      `json:"created_at"`
}

func toResponse(a *kinetics.Analysis) analysisResponse {
	return analysisResponse{
		ID:            string(a.ID),
		SourceName:    a.SourceName,
		PointCount:    a.Series.Len(),
		SelectedCount: len(a.SelectedIndices),
		BetterModel:   string(a.BetterModel()),
		PFO: fitResponse{
			Model:        string(a.PFO.Model),
			RateConstant: a.PFO.RateMagnitude(),
			RSquared:     a.PFO.R2,
			MAPE:         a.PFO.MAPE,
		},
		PSO: fitResponse{
			Model:        string(a.PSO.Model),
			RateConstant: a.PSO.RateConstant,
			RSquared:     a.PSO.R2,
			MAPE:         a.PSO.MAPE,
		},
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("request body must be valid JSON"))
		return
	}
	if len(req.Times) != len(req.Concs) {
		writeError(w, apperrors.InvalidInput("times and concentrations must have the same length"))
		return
	}

	analysis, err := h.service.AnalyzePoints(r.Context(), req.SourceName, req.Times, req.Concs, req.InitialConc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(analysis))
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	analysis, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(analysis))
}

func (h *Handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.service.List(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]analysisResponse, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, toResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": items})
}

func (h *Handler) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	body := map[string]string{"error": err.Error()}
	if appErr, ok := err.(*apperrors.AppError); ok {
		body["code"] = appErr.Code
		body["error"] = appErr.Message
	}
	writeJSON(w, status, body)
}
