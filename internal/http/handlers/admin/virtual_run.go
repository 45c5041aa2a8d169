package admin

import (
	"net/http"
	"strings"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/gin-gonic/gin"
)

// VirtualRuns 线上跑提交记录
func (h *Handler) VirtualRuns(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	runs, total, err := h.VirtualRunService.List(repository.VirtualRunListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.SuccessWithPage(c, "get virtual trans successful....", gin.H{"trans": runs}, response.NewPagination(page, pageSize, total))
}

// RegisterRunnerRequest 登记跑者
type RegisterRunnerRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// RegisterRunner 登记线上跑选手
func (h *Handler) RegisterRunner(c *gin.Context) {
	var req RegisterRunnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeInputMissing, nil)
		return
	}
	runner, err := h.VirtualRunService.RegisterRunner(req.UserName, req.Email)
	if err != nil {
		respondMapped(c, err, runnerErrorRules)
		return
	}
	response.Success(c, "Register runner successful...", gin.H{"runner": runner})
}
