package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newspaper/metrics"
	"newspaper/models"
	"newspaper/repositories"

	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
)

// RateLimitWindow is the trailing window the daily post limits are counted over.
const RateLimitWindow = 24 * time.Hour

type newsForm struct {
	Title   string `json:"title" validate:"required,min=5,max=255"`
	Content string `json:"content" validate:"required,min=20"`
}

type articleForm struct {
	Title   string `json:"title" validate:"required,min=5,max=255"`
	Content string `json:"content" validate:"required,min=50"`
}

// postForm validates post input the same way for the HTTP handlers and any other caller.
type postForm struct {
	validate     *validator.Validate
	translator   ut.Translator
	postRepo     repositories.PostRepository
	categoryRepo repositories.CategoryRepository
	now          func() time.Time
}

// clean checks title and content lengths and resolves the category ids.
// With checkLimit set it also enforces the daily limit for userID.
func (f *postForm) clean(ctx context.Context, userID uint, postType models.PostType, req models.PostRequest, checkLimit bool) ([]models.Category, error) {
	formErr := models.NewFormError()

	var form interface{} = newsForm{Title: req.Title, Content: req.Content}
	if postType == models.PostTypeArticle {
		form = articleForm{Title: req.Title, Content: req.Content}
	}
	if err := f.validate.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, err
		}
		for _, fe := range validationErrors {
			formErr.Add(fe.Field(), fe.Translate(f.translator))
		}
	}

	categories, err := f.categories(ctx, req.Categories, formErr)
	if err != nil {
		return nil, err
	}

	if checkLimit {
		if err := f.checkLimit(ctx, userID, postType, formErr); err != nil {
			return nil, err
		}
	}

	if !formErr.Empty() {
		return nil, formErr
	}
	return categories, nil
}

func (f *postForm) categories(ctx context.Context, ids []uint, formErr *models.FormError) ([]models.Category, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	categories, err := f.categoryRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(categories) == len(unique) {
		return categories, nil
	}

	found := make(map[uint]bool, len(categories))
	for _, c := range categories {
		found[c.ID] = true
	}
	for _, id := range unique {
		if !found[id] {
			formErr.Add("categories", fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id))
		}
	}
	return categories, nil
}

func (f *postForm) checkLimit(ctx context.Context, userID uint, postType models.PostType, formErr *models.FormError) error {
	since := f.now().Add(-RateLimitWindow)
	count, err := f.postRepo.CountRecentByUser(ctx, userID, postType, since)
	if err != nil {
		return err
	}

	if count >= int64(postType.DailyLimit()) {
		addLimitError(formErr, postType, count)
	}
	return nil
}

func addLimitError(formErr *models.FormError, postType models.PostType, count int64) {
	metrics.PostsRejected.WithLabelValues(string(postType)).Inc()
	formErr.Add(models.NonFieldErrors, fmt.Sprintf(
		"You cannot publish more than %d %s per day. You have already published %d in the last 24 hours.",
		postType.DailyLimit(), pluralNoun(postType), count))
}

func pluralNoun(postType models.PostType) string {
	if postType == models.PostTypeArticle {
		return "articles"
	}
	return "news"
}
