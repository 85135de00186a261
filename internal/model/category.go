package model

type Category struct {
	Model
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(255);" json:"description"`
	ParentID    *uint  `gorm:"index" json:"parent_id,omitempty"` // 为空表示一级分类
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
	IsActive    bool   `gorm:"default:true;not null" json:"is_active"`
}
