package models

import (
	"time"
)

// VirtualRunStatusUploaded 已上传待确认
const VirtualRunStatusUploaded = "uploaded"

// Runner 线上跑报名选手
type Runner struct {
	RunnerID  uint      `gorm:"primaryKey" json:"runnerId"`
	UserName  string    `gorm:"type:varchar(200);index;not null" json:"userName"`
	Email     string    `gorm:"type:varchar(200);index;not null" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定表名
func (Runner) TableName() string {
	return "runners"
}

// VirtualRun 线上跑成绩提交，ai* 为识别值，confirmed* 为审核值
type VirtualRun struct {
	VirtualRunID      uint       `gorm:"primaryKey" json:"virtualRunId"`
	RunnerID          uint       `gorm:"index;not null" json:"runnerId"`
	UserUploadPicURL  string     `gorm:"type:varchar(500);not null" json:"userUploadPicUrl"`
	AIDate            *time.Time `json:"aiDate"`
	AIDistance        *float64   `json:"aiDistance"`
	AITotalTime       *string    `gorm:"type:varchar(20)" json:"aiTotalTime"`
	ConfirmedDate     *time.Time `json:"confirmedDate"`
	ConfirmedDistance *float64   `json:"confirmedDistance"`
	ConfirmedTime     *string    `gorm:"type:varchar(20)" json:"confirmedTime"`
	Status            string     `gorm:"type:varchar(20);index;not null" json:"status"`
	CreatedAt         time.Time  `gorm:"index" json:"createdAt"`

	Runner *Runner `gorm:"foreignKey:RunnerID" json:"runner,omitempty"`
}

// TableName 指定表名
func (VirtualRun) TableName() string {
	return "virtual_runs"
}
