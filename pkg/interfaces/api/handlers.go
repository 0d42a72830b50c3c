package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/application/services"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/memory"
)

// maxBodyBytes bounds a posted reconciliation request
const maxBodyBytes = 32 << 20

// Handler serves the reconciliation API. Every run it performs is saved to
// Runs so it can be fetched again by ID.
type Handler struct {
	config services.Config
	runs   repositories.RunRepository
	logger *zap.Logger
}

// NewHandler creates a handler. A nil runs repository keeps runs in memory.
func NewHandler(config services.Config, runs repositories.RunRepository, logger *zap.Logger) *Handler {
	if runs == nil {
		runs = memory.NewRunRepository()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{config: config, runs: runs, logger: logger}
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reconcile allocates the posted issues to the posted receipts.
// POST /api/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	config := h.config
	if req.DayFirst != nil {
		config.DayFirst = *req.DayFirst
	}

	source := memory.NewMovementRepository()
	for _, row := range toRawMovements(req.Issues) {
		source.AddIssue(row)
	}
	for _, row := range toRawMovements(req.Receipts) {
		source.AddReceipt(row)
	}

	service := services.NewReconcileService(config,
		services.WithSinks(h.runs),
		services.WithLogger(h.logger))

	result, err := service.Reconcile(r.Context(), source)
	if err != nil {
		h.logger.Error("reconciliation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ReconcileResponse{
		ReconcileResult: result,
		Warnings:        result.Warnings(),
	})
}

// ListRuns returns the headers of stored runs, newest first.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, toRunSummaries(runs))
}

// GetRun returns a stored run.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runs.GetRun(r.Context(), id)
	if errors.Is(err, repositories.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run", err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
