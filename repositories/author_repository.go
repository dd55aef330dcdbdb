package repositories

import (
	"context"

	"newspaper/models"

	"gorm.io/gorm"
)

type AuthorRepository interface {
	GetOrCreate(ctx context.Context, userID uint) (*models.Author, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Author, error)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) GetOrCreate(ctx context.Context, userID uint) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).
		Where(models.Author{UserID: userID}).
		FirstOrCreate(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&author).Error
	if err != nil {
		return nil, translate(err, "author")
	}
	return &author, nil
}
