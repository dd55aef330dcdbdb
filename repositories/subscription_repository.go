package repositories

import (
	"context"

	"newspaper/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	// Create reports whether a new row was written; an existing pair is left untouched.
	Create(ctx context.Context, userID, categoryID uint) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, userID, categoryID uint) (bool, error)
	GetByCategory(ctx context.Context, categoryID uint) ([]models.Subscription, error)
	GetByUser(ctx context.Context, userID uint) ([]models.Subscription, error)
	Exists(ctx context.Context, userID, categoryID uint) (bool, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, userID, categoryID uint) (bool, error) {
	sub := models.Subscription{UserID: userID, CategoryID: categoryID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoNothing: true,
		}).
		Create(&sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, userID, categoryID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetByCategory returns subscriptions with their users, in subscription order.
func (r *subscriptionRepository) GetByCategory(ctx context.Context, categoryID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) GetByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("id").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Count(&count).Error
	return count > 0, err
}
