package model

type Skill struct {
	Model
	Name       string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CategoryID *uint  `gorm:"index" json:"category_id,omitempty"`
	Popularity uint   `gorm:"default:0" json:"popularity"`
}
