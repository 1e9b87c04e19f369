package project

import "time"

type Project struct {
	ID        int64     `gorm:"primaryKey"`
	OrgID     int64     `gorm:"column:org_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Project) TableName() string {
	return "projects"
}

type WorkCategory struct {
	ID        int64     `gorm:"primaryKey"`
	OrgID     int64     `gorm:"column:org_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (WorkCategory) TableName() string {
	return "work_categories"
}
