package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newspaper/models"
	"newspaper/repositories"

	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
)

const dateLayout = "2006-01-02"

// Notifier tells subscribers about a post that just received its first categories.
type Notifier interface {
	NotifyNewPost(ctx context.Context, post *models.Post, categories []models.Category) models.FanOutReport
}

type PostService interface {
	Create(ctx context.Context, actor models.Actor, postType models.PostType, req models.PostRequest) (*models.Post, error)
	Update(ctx context.Context, actor models.Actor, postType models.PostType, id uint, req models.PostRequest) (*models.Post, error)
	Delete(ctx context.Context, actor models.Actor, postType models.PostType, id uint) error
	// Get loads a post; an empty postType matches both news and articles.
	Get(ctx context.Context, postType models.PostType, id uint) (*models.Post, error)
	List(ctx context.Context, params models.PostListParams) ([]models.Post, int64, error)
	PostingLimits(ctx context.Context, actor models.Actor) (*models.PostingLimits, error)
}

type postService struct {
	postRepo   repositories.PostRepository
	authorRepo repositories.AuthorRepository
	notifier   Notifier
	form       *postForm
	log        *slog.Logger
	now        func() time.Time
}

type PostServiceDeps struct {
	PostRepo     repositories.PostRepository
	AuthorRepo   repositories.AuthorRepository
	CategoryRepo repositories.CategoryRepository
	Notifier     Notifier
	Validate     *validator.Validate
	Translator   ut.Translator
	Logger       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewPostService(deps PostServiceDeps) PostService {
	clock := deps.Now
	if clock == nil {
		clock = time.Now
	}
	// Stored timestamps are UTC; comparisons must be too.
	now := func() time.Time { return clock().UTC() }
	return &postService{
		postRepo:   deps.PostRepo,
		authorRepo: deps.AuthorRepo,
		notifier:   deps.Notifier,
		log:        deps.Logger,
		now:        now,
		form: &postForm{
			validate:     deps.Validate,
			translator:   deps.Translator,
			postRepo:     deps.PostRepo,
			categoryRepo: deps.CategoryRepo,
			now:          now,
		},
	}
}

func (s *postService) Create(ctx context.Context, actor models.Actor, postType models.PostType, req models.PostRequest) (*models.Post, error) {
	if !postType.Valid() {
		return nil, fmt.Errorf("post type %q: %w", postType, models.ErrNotFound)
	}
	if !actor.Can(models.CapAddPost) {
		return nil, fmt.Errorf("only authors can publish %s: %w", pluralNoun(postType), models.ErrForbidden)
	}

	categories, err := s.form.clean(ctx, actor.UserID, postType, req, true)
	if err != nil {
		return nil, err
	}

	author, err := s.authorRepo.GetOrCreate(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:   author.ID,
		PostType:   postType,
		Title:      req.Title,
		Content:    req.Content,
		Categories: categories,
		CreatedAt:  s.now(),
	}
	// The form already checked the limit; this repeats it atomically with the insert.
	count, err := s.postRepo.CreateWithinLimit(ctx, post, postType.DailyLimit(), s.now().Add(-RateLimitWindow))
	if errors.Is(err, repositories.ErrPostLimitReached) {
		formErr := models.NewFormError()
		addLimitError(formErr, postType, count)
		return nil, formErr
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("post created", "post_id", post.ID, "post_type", postType, "author_id", author.ID)

	// The post is stored; a client going away must not cut the fan-out short.
	ctx = context.WithoutCancel(ctx)
	if len(categories) > 0 {
		s.notify(ctx, post, categories)
	}

	return s.postRepo.GetByID(ctx, post.ID, postType)
}

func (s *postService) Update(ctx context.Context, actor models.Actor, postType models.PostType, id uint, req models.PostRequest) (*models.Post, error) {
	post, err := s.editable(ctx, actor, models.CapChangePost, postType, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.form.clean(ctx, actor.UserID, postType, req, false)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Content = req.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	// A nil category list leaves the current categories untouched.
	if req.Categories != nil {
		hadCategories := len(post.Categories) > 0
		if err := s.postRepo.ReplaceCategories(ctx, post, categories); err != nil {
			return nil, err
		}
		if !hadCategories && len(categories) > 0 {
			ctx = context.WithoutCancel(ctx)
			s.notify(ctx, post, categories)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, postType)
}

func (s *postService) Delete(ctx context.Context, actor models.Actor, postType models.PostType, id uint) error {
	post, err := s.editable(ctx, actor, models.CapDeletePost, postType, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.log.Info("post deleted", "post_id", post.ID, "user_id", actor.UserID)
	return nil
}

// editable loads the post and checks the actor may modify it: owners with the capability, or admins.
func (s *postService) editable(ctx context.Context, actor models.Actor, capability models.Capability, postType models.PostType, id uint) (*models.Post, error) {
	if !actor.Can(capability) {
		return nil, fmt.Errorf("%s: %w", capability, models.ErrForbidden)
	}

	post, err := s.postRepo.GetByID(ctx, id, postType)
	if err != nil {
		return nil, err
	}

	if post.Author.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("post %d belongs to another author: %w", id, models.ErrForbidden)
	}
	return post, nil
}

func (s *postService) notify(ctx context.Context, post *models.Post, categories []models.Category) {
	if s.notifier == nil {
		return
	}
	report := s.notifier.NotifyNewPost(ctx, post, categories)
	s.log.Info("subscribers notified", "post_id", post.ID, "sent", report.Sent, "failed", report.Failed)
}

func (s *postService) Get(ctx context.Context, postType models.PostType, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, postType)
}

func (s *postService) List(ctx context.Context, params models.PostListParams) ([]models.Post, int64, error) {
	filter := repositories.PostFilter{
		PostType:   params.PostType,
		Title:      params.Title,
		CategoryID: params.CategoryID,
	}
	filter.Page, filter.Limit = params.Paging()

	if params.CreatedAfter != "" {
		createdAfter, err := time.ParseInLocation(dateLayout, params.CreatedAfter, time.UTC)
		if err != nil {
			formErr := models.NewFormError()
			formErr.Add("created_after", "Enter a valid date in YYYY-MM-DD format.")
			return nil, 0, formErr
		}
		filter.CreatedAfter = &createdAfter
	}

	return s.postRepo.GetList(ctx, filter)
}

func (s *postService) PostingLimits(ctx context.Context, actor models.Actor) (*models.PostingLimits, error) {
	since := s.now().Add(-RateLimitWindow)

	newsCount, err := s.postRepo.CountRecentByUser(ctx, actor.UserID, models.PostTypeNews, since)
	if err != nil {
		return nil, err
	}
	articleCount, err := s.postRepo.CountRecentByUser(ctx, actor.UserID, models.PostTypeArticle, since)
	if err != nil {
		return nil, err
	}

	return &models.PostingLimits{
		IsAuthor:     actor.Role.IsAuthor(),
		NewsCount:    newsCount,
		NewsLimit:    models.PostTypeNews.DailyLimit(),
		ArticleCount: articleCount,
		ArticleLimit: models.PostTypeArticle.DailyLimit(),
	}, nil
}
