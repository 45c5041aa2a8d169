package repository

import "gorm.io/gorm"

// MaxListPageSize 后台列表单页上限，与 handler 的归一化保持一致
const MaxListPageSize = 100

// applyPagination 按页截取；pageSize <= 0 时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > MaxListPageSize {
		pageSize = MaxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
