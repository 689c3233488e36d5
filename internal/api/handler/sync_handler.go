package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
	"github.com/mateus-bonette00/qota-store/internal/sync"
)

const defaultRunsLimit = 20

// SyncRunner triggers marketplace sync runs. Satisfied by *sync.Engine.
type SyncRunner interface {
	Run(ctx context.Context, trigger sync.Trigger) error
	Running() bool
}

// SyncHandler handles HTTP requests for marketplace sync operations
type SyncHandler struct {
	logger *slog.Logger
	engine SyncRunner
	runs   syncrun.Repository
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, engine SyncRunner, runs syncrun.Repository) *SyncHandler {
	return &SyncHandler{
		logger: logger,
		engine: engine,
		runs:   runs,
	}
}

// Trigger starts a manual sync run, returning 409 when one is in flight
func (h *SyncHandler) Trigger(c *gin.Context) {
	err := h.engine.Run(c.Request.Context(), sync.TriggerManual)
	if err != nil {
		if errors.Is(err, sync.ErrSyncAlreadyRunning) {
			RespondConflict(c, "A sync run is already in progress")
			return
		}
		h.logger.Error("Manual sync run failed", "error", err)
		RespondWithError(c, http.StatusBadGateway, "SYNC_FAILED", err.Error())
		return
	}

	RespondOK(c, gin.H{"status": "completed"})
}

// Status reports whether a sync run is currently in flight
func (h *SyncHandler) Status(c *gin.Context) {
	RespondOK(c, gin.H{"running": h.engine.Running()})
}

// Runs lists the most recent sync audit rows
func (h *SyncHandler) Runs(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondBadRequest(c, "Invalid limit: "+raw)
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list sync runs", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, runs)
}
