package admin

import (
	"net/http"

	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeInputMissing, nil)
		return
	}
	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		respondMapped(c, err, loginErrorRules)
		return
	}
	requestLog(c).Infow("admin_login", "admin_id", admin.ID)
	response.Success(c, "Login successful...", gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      gin.H{"id": admin.ID, "username": admin.Username},
	})
}
