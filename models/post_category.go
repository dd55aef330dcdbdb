package models

import (
	"time"

	"gorm.io/gorm"
)

type PostCategory struct {
	PostID     uint      `json:"post_id" gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"primaryKey;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Categories", &PostCategory{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&User{},
		&Author{},
		&Category{},
		&Post{},
		&Subscription{},
		&Comment{},
		&JobExecution{},
	)
}
