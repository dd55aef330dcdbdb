package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"newspaper/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPostLimitReached is returned by CreateWithinLimit when the author already has limit posts in the window.
var ErrPostLimitReached = errors.New("post limit reached")

// PostFilter narrows GetList. Zero values mean "no filter".
type PostFilter struct {
	PostType     models.PostType
	Title        string
	CategoryID   uint
	CreatedAfter *time.Time
	Page         int
	Limit        int
}

type PostRepository interface {
	CreateWithinLimit(ctx context.Context, post *models.Post, limit int, since time.Time) (int64, error)
	GetByID(ctx context.Context, id uint, postType models.PostType) (*models.Post, error)
	GetList(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceCategories(ctx context.Context, post *models.Post, categories []models.Category) error
	Delete(ctx context.Context, id uint) error
	CountRecentByUser(ctx context.Context, userID uint, postType models.PostType, since time.Time) (int64, error)
	GetSince(ctx context.Context, postType models.PostType, since time.Time) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreateWithinLimit counts the author's posts of the same type since the given time and inserts
// the post, linking the categories already set on it, only while that count is below limit. Count and insert share one transaction holding
// the author row, so concurrent creates by one author cannot both pass.
func (r *postRepository) CreateWithinLimit(ctx context.Context, post *models.Post, limit int, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		// SQLite has no FOR UPDATE; its writers are serialised anyway.
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var author models.Author
		if err := locked.First(&author, post.AuthorID).Error; err != nil {
			return translate(err, "author")
		}

		err := tx.Model(&models.Post{}).
			Where("author_id = ? AND post_type = ? AND created_at >= ?", post.AuthorID, post.PostType, since).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return ErrPostLimitReached
		}
		return tx.Omit("Categories.*").Create(post).Error
	})
	return count, err
}

// GetByID loads a post with its author and categories. An empty postType matches any type.
func (r *postRepository) GetByID(ctx context.Context, id uint, postType models.PostType) (*models.Post, error) {
	var post models.Post
	query := r.db.WithContext(ctx).
		Preload("Author.User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.id") })
	if postType != "" {
		query = query.Where("post_type = ?", postType)
	}
	if err := query.First(&post, id).Error; err != nil {
		return nil, translate(err, "post")
	}
	return &post, nil
}

func (r *postRepository) GetList(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Post{})
		if filter.PostType != "" {
			query = query.Where("posts.post_type = ?", filter.PostType)
		}
		if filter.Title != "" {
			query = query.Where("LOWER(posts.title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
		}
		if filter.CategoryID > 0 {
			query = query.Where("posts.id IN (?)",
				r.db.Table("post_categories").Select("post_id").Where("category_id = ?", filter.CategoryID))
		}
		if filter.CreatedAfter != nil {
			query = query.Where("posts.created_at >= ?", *filter.CreatedAfter)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := filtered().
		Preload("Author.User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.id") }).
		Order("posts.created_at desc").
		Order("posts.id desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&posts).Error

	return posts, total, err
}

// Update saves scalar fields only; post_type and author are never rewritten.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "updated_at").
		Updates(map[string]interface{}{
			"title":   post.Title,
			"content": post.Content,
		}).Error
}

func (r *postRepository) ReplaceCategories(ctx context.Context, post *models.Post, categories []models.Category) error {
	if err := r.db.WithContext(ctx).Model(post).Association("Categories").Replace(categories); err != nil {
		return err
	}
	post.Categories = categories
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// CountRecentByUser counts posts of one type written by the author wrapping userID since the given time.
func (r *postRepository) CountRecentByUser(ctx context.Context, userID uint, postType models.PostType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN authors ON authors.id = posts.author_id").
		Where("authors.user_id = ? AND posts.post_type = ? AND posts.created_at >= ?", userID, postType, since).
		Count(&count).Error
	return count, err
}

// GetSince returns posts of one type created at or after since, newest first, with categories.
func (r *postRepository) GetSince(ctx context.Context, postType models.PostType, since time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author.User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.id") }).
		Where("post_type = ? AND created_at >= ?", postType, since).
		Order("created_at desc").
		Order("id desc").
		Find(&posts).Error
	return posts, err
}
