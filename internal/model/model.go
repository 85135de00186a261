package model

import (
	"time"

	"gorm.io/gorm"
)

// Model 所有表共用的主键、时间戳与软删除字段
type Model struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
