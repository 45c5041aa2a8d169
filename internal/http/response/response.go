package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 根据总数计算页数
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

// Success 成功响应：业务字段平铺，附带 msg
func Success(c *gin.Context, msg string, payload gin.H) {
	body := gin.H{}
	for key, value := range payload {
		body[key] = value
	}
	body["msg"] = msg
	c.JSON(http.StatusOK, body)
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, msg string, payload gin.H, pagination Pagination) {
	body := gin.H{"pagination": pagination}
	for key, value := range payload {
		body[key] = value
	}
	Success(c, msg, body)
}

// Error 错误响应：HTTP 状态码 + 机器可读错误码
func Error(c *gin.Context, status int, code string) {
	c.JSON(status, attachRequestID(c, gin.H{"msg": code}))
}

// Attachment 文件下载
func Attachment(c *gin.Context, filename, contentType string, content []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, content)
}

func attachRequestID(c *gin.Context, body gin.H) gin.H {
	if c == nil {
		return body
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok && id != "" {
			body["request_id"] = id
		}
	}
	return body
}
