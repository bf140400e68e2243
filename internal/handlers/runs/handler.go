package runs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/handlers"
	"gitlab.com/equivcheck-2025.net/internal/handlers/response"
)

const maxListLimit = 500

// RunHandler handles run API requests
type RunHandler struct {
	runService run.IRunService
	logger     primary.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runService run.IRunService, logger primary.Logger) *RunHandler {
	return &RunHandler{
		runService: runService,
		logger:     logger,
	}
}

// RegisterRoutes registers the API routes for RunHandler
func (h *RunHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/runs", h.CreateRun).Methods("POST")
	router.HandleFunc("/runs", h.ListRuns).Methods("GET")
	router.HandleFunc("/runs/{runId}", h.GetRun).Methods("GET")
	router.HandleFunc("/runs/{runId}/cancel", h.CancelRun).Methods("POST")
}

// CreateRun queues a run, or executes it when the request asks to wait
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Contract == "" || req.Candidate == "" {
		handlers.ResponseError(w, "contract and candidate are required", http.StatusBadRequest)
		return
	}

	if req.Wait {
		record, err := h.runService.RunNow(r.Context(), req.Contract, req.Candidate, req.Override)
		if err != nil {
			h.logger.Error("Failed to run", "contract", req.Contract, "error", err)
			handlers.ResponseServiceError(w, "Failed to run", err)
			return
		}
		handlers.ResponseWithJson(w, http.StatusOK, record)
		return
	}

	runID, err := h.runService.EnqueueRun(r.Context(), req.Contract, req.Candidate, req.Override)
	if err != nil {
		h.logger.Error("Failed to create run", "contract", req.Contract, "error", err)
		handlers.ResponseServiceError(w, "Failed to create run", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusAccepted, CreateRunResponse{RunID: runID})
}

// ListRuns handles run listing requests, filtered by contract and status
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RunFilter{
		Contract: q.Get("contract"),
		Statuses: domain.ParseStatuses(q.Get("status")),
		Limit:    50,
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxListLimit {
			handlers.ResponseError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	records, err := h.runService.ListRuns(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		handlers.ResponseServiceError(w, "Failed to list runs", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, ListRunsResponse{Runs: records})
}

// GetRun handles run retrieval requests
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	record, err := h.runService.GetRun(r.Context(), runID)
	if err != nil {
		h.logger.Error("Failed to get run", "runId", runID, "error", err)
		handlers.ResponseServiceError(w, "Failed to get run", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, record)
}

// CancelRun handles run cancellation requests
func (h *RunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	if err := h.runService.CancelRun(r.Context(), runID); err != nil {
		h.logger.Error("Failed to cancel run", "runId", runID, "error", err)
		handlers.ResponseServiceError(w, "Failed to cancel run", err)
		return
	}
	response.WriteNoContent(w)
}

func (h *RunHandler) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["runId"]
	runID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Invalid run ID", "id", raw)
		handlers.ResponseError(w, "Invalid run ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return runID, true
}
