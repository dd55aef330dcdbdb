package models

import "time"

// Subscription rows are only ever created or hard-deleted.
type Subscription struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_subscription_user_category"`
	User       User      `json:"user" gorm:"foreignKey:UserID"`
	CategoryID uint      `json:"category_id" gorm:"not null;uniqueIndex:idx_subscription_user_category;index"`
	Category   Category  `json:"category" gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `json:"subscribed_at"`
}
