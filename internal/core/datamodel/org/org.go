package org

import "time"

type Organization struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Organization) TableName() string {
	return "organizations"
}
