package public

import (
	"net/http"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadVirtualRun 线上跑成绩截图上传（multipart: name, email, images）
func (h *Handler) UploadVirtualRun(c *gin.Context) {
	file, err := handlershared.FormImage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, response.CodeNoImageUploaded, nil)
		return
	}
	staged, err := h.UploadService.Stage(file)
	if err != nil {
		respondMapped(c, err, virtualRunErrorRules)
		return
	}
	defer staged.Remove()

	run, err := h.VirtualRunService.Submit(c.Request.Context(), c.PostForm("name"), c.PostForm("email"), staged)
	if err != nil {
		respondMapped(c, err, virtualRunErrorRules)
		return
	}
	response.Success(c, "upload successful....", gin.H{"virtualRunId": run.VirtualRunID})
}
