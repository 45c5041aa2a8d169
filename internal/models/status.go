package models

// Status 订单状态字典表
type Status struct {
	StatusID  uint   `gorm:"primaryKey;autoIncrement:false" json:"statusId"`
	Name      string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Label     string `gorm:"type:varchar(100)" json:"label"`
	SortOrder int    `gorm:"not null;default:0" json:"sortOrder"`
}

// TableName 指定表名
func (Status) TableName() string {
	return "statuses"
}
