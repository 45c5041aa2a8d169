package repository

// OrderListFilter 后台订单列表过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	StatusID    uint
	Search      string // 按姓名/邮箱/电话模糊匹配
	IsImportant *bool
}

// VirtualRunListFilter 线上跑记录过滤条件
type VirtualRunListFilter struct {
	Page     int
	PageSize int
	Status   string
}
