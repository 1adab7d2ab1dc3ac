package domain

import "time"

// UserTag is one named label on a user, weighted 0..1. Tags expire via
// ExpireAt and are deactivated (not deleted) by the cleanup job.
type UserTag struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	TagName   string     `gorm:"column:tag_name;not null" json:"tag_name"`
	Category  string     `gorm:"column:category;index" json:"category"`
	Source    string     `gorm:"column:source" json:"source"`
	Weight    float64    `gorm:"column:weight;default:1" json:"weight"`
	Active    bool       `gorm:"column:active;default:true" json:"active"`
	ExpireAt  *time.Time `gorm:"column:expire_at" json:"expire_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (UserTag) TableName() string {
	return "user_tags"
}
