package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/awareness-backend/internal/http/response"
	"github.com/yungbote/awareness-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_user_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
