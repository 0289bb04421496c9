package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/awareness-backend/internal/http/response"
	certmod "github.com/yungbote/awareness-backend/internal/modules/certification"
)

type AdminHandler struct {
	cert certmod.Usecases
}

func NewAdminHandler(cert certmod.Usecases) *AdminHandler {
	return &AdminHandler{cert: cert}
}

// GET /api/admin/users/:id/attempts
func (h *AdminHandler) UserAttempts(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	out, err := h.cert.UserAttempts(c.Request.Context(), targetID)
	if err != nil {
		response.RespondAPIError(c, err, "load_attempts_failed")
		return
	}
	response.RespondOK(c, out)
}

// POST /api/admin/users/:id/reset
// body (optional): { "reason": "..." }
func (h *AdminHandler) ResetUser(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.cert.ResetUser(c.Request.Context(), certmod.ResetInput{
		ActorID:  actorID,
		TargetID: targetID,
		Reason:   req.Reason,
	})
	if err != nil {
		response.RespondAPIError(c, err, "reset_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"userId":       res.UserID,
		"wasCertified": res.WasCertified,
		"modulesReset": res.ModulesReset,
	})
}
