package models

import "time"

// Setting 后台可改的运行时设置，按 key 整体存取
type Setting struct {
	Key       string    `gorm:"primarykey;type:varchar(100)" json:"key"`
	ValueJSON JSON      `gorm:"type:json" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
