package api

import (
	"net/http"
	"strconv"

	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// RegisterRoutes attaches all engine endpoints to the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/vocabulary/initialize", h.initializeVocabulary)
	mux.HandleFunc("POST /api/items/{itemID}/status", h.updateItemStatus)
	mux.HandleFunc("POST /api/scores", h.submitScore)
	mux.HandleFunc("GET /api/completions", h.getCompletion)
	mux.HandleFunc("GET /api/progress", h.getTaskProgress)
}

// ── Request / Response types ────────────────────────────────────────────────

type InitializeRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

type InitializeResponse struct {
	Items       []models.LearningItem `json:"items"`
	Initialized bool                  `json:"initialized"`
}

type UpdateStatusRequest struct {
	UserID string               `json:"user_id"`
	Status models.MasteryStatus `json:"status"`
}

type UpdateStatusResponse struct {
	Item           *models.LearningItem `json:"item"`
	PreviousStatus models.MasteryStatus `json:"previous_status"`
	Completion     *models.Completion   `json:"completion,omitempty"`
	NewlyCompleted bool                 `json:"newly_completed"`
}

type SubmitScoreRequest struct {
	UserID   string             `json:"user_id"`
	TaskID   string             `json:"task_id"`
	CourseID string             `json:"course_id"`
	RawScore float64            `json:"raw_score"`
	MaxScore float64            `json:"max_score"`
	Source   models.ScoreSource `json:"source"`
}

type SubmitScoreResponse struct {
	Completion     *models.Completion `json:"completion"`
	NewlyCompleted bool               `json:"newly_completed"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /api/vocabulary/initialize
func (h *Handler) initializeVocabulary(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, created, err := h.engine.Initialize(r.Context(), req.UserID, req.TaskID)
	if h.handleEngineError(w, err) {
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, InitializeResponse{Items: items, Initialized: created})
}

// POST /api/items/{itemID}/status
func (h *Handler) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("itemID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, previous, err := h.engine.UpdateItemStatus(r.Context(), itemID, req.UserID, req.Status)
	if h.handleEngineError(w, err) {
		return
	}

	resp := UpdateStatusResponse{Item: item, PreviousStatus: previous}

	// Recompute vocabulary completion only when the change crosses the
	// mastered boundary; other transitions cannot move the fraction across
	// the threshold.
	wasMastered := previous == models.StatusMastered
	isMastered := item.Status == models.StatusMastered
	if wasMastered != isMastered {
		completion, newlyCompleted, err := h.engine.RecomputeMastery(r.Context(), req.UserID, item.TaskID)
		if h.handleEngineError(w, err) {
			return
		}
		resp.Completion = completion
		resp.NewlyCompleted = newlyCompleted
	}

	respondJSON(w, http.StatusOK, resp)
}

// POST /api/scores
func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	var req SubmitScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	completion, newlyCompleted, err := h.engine.SubmitScore(r.Context(), models.ScoreEvent{
		UserID:   req.UserID,
		TaskID:   req.TaskID,
		CourseID: req.CourseID,
		RawScore: req.RawScore,
		MaxScore: req.MaxScore,
		Source:   req.Source,
	})
	if h.handleEngineError(w, err) {
		return
	}

	respondJSON(w, http.StatusOK, SubmitScoreResponse{
		Completion:     completion,
		NewlyCompleted: newlyCompleted,
	})
}

// GET /api/completions?user_id=&task_id=
func (h *Handler) getCompletion(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	taskID := r.URL.Query().Get("task_id")

	completion, err := h.engine.GetCompletion(r.Context(), userID, taskID)
	if h.handleEngineError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, completion)
}

// GET /api/progress?user_id=&task_id=
func (h *Handler) getTaskProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	taskID := r.URL.Query().Get("task_id")

	p, err := h.engine.GetTaskProgress(r.Context(), userID, taskID)
	if h.handleEngineError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, p)
}
