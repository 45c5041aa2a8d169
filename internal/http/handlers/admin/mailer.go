package admin

import (
	"net/http"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SendMailRequest 自定义邮件
type SendMailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendMail 投递自定义邮件
func (h *Handler) SendMail(c *gin.Context) {
	var req SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeInvalidEmail, nil)
		return
	}
	if err := h.Notifier.SendCustom(req.To, req.Subject, req.Text); err != nil {
		respondMapped(c, err, handlershared.EmailRules)
		return
	}
	response.Success(c, "Send email successful...", nil)
}
