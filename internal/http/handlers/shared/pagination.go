package shared

import (
	"strconv"

	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > repository.MaxListPageSize {
		pageSize = repository.MaxListPageSize
	}
	return page, pageSize
}

// QueryPagination 读取 page / page_size 查询参数。
func QueryPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return NormalizePagination(page, pageSize)
}
