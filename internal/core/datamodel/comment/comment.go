package comment

import "time"

// Comment rows are append-only. AuthorID is nil for system/ai comments
// generated by the lifecycle engine itself.
type Comment struct {
	ID          int64     `gorm:"primaryKey"`
	OrgID       int64     `gorm:"column:org_id;not null;index"`
	ReportID    int64     `gorm:"column:report_id;not null;index"`
	AuthorID    *int64    `gorm:"column:author_id"`
	CommentType string    `gorm:"column:comment_type;not null;default:user"`
	Content     string    `gorm:"column:content;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now();index"`
}

func (Comment) TableName() string {
	return "comments"
}
