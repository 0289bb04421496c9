package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/awareness-backend/internal/http/response"
	trainingmod "github.com/yungbote/awareness-backend/internal/modules/training"
)

type TrainingHandler struct {
	training trainingmod.Usecases
}

func NewTrainingHandler(training trainingmod.Usecases) *TrainingHandler {
	return &TrainingHandler{training: training}
}

// GET /api/modules
func (h *TrainingHandler) ListModules(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	out, err := h.training.ListModules(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "load_modules_failed")
		return
	}
	response.RespondOK(c, out)
}

// POST /api/modules/:id/progress
// body: { "watched_seconds": 120, "completed": false }
func (h *TrainingHandler) RecordProgress(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil || moduleID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
		return
	}
	var req struct {
		WatchedSeconds int  `json:"watched_seconds"`
		Completed      bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p, err := h.training.RecordProgress(c.Request.Context(), trainingmod.RecordProgressInput{
		UserID:         userID,
		ModuleID:       moduleID,
		WatchedSeconds: req.WatchedSeconds,
		Completed:      req.Completed,
	})
	if err != nil {
		response.RespondAPIError(c, err, "record_progress_failed")
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}
