package models

import "time"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PostRequest is the body of create and update calls for both news and articles.
type PostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Categories []uint `json:"categories"`
}

type PostListParams struct {
	PostType     PostType `form:"-"`
	Title        string   `form:"title"`
	CategoryID   uint     `form:"category_id"`
	CreatedAfter string   `form:"created_after"`
	Page         int      `form:"page,default=1"`
	Limit        int      `form:"limit,default=10"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paging returns the page and page size a list call actually uses.
func (p PostListParams) Paging() (page, limit int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type PostingLimits struct {
	IsAuthor     bool  `json:"is_author"`
	NewsCount    int64 `json:"news_count"`
	NewsLimit    int   `json:"news_limit"`
	ArticleCount int64 `json:"article_count"`
	ArticleLimit int   `json:"article_limit"`
}

type SubscriptionResult struct {
	CategoryID uint   `json:"category_id"`
	Subscribed bool   `json:"subscribed"`
	Changed    bool   `json:"changed"`
	Message    string `json:"message"`
}

type PostResponse struct {
	ID         uint       `json:"id"`
	PostType   PostType   `json:"post_type"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   uint       `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Categories []Category `json:"categories"`
	CreatedAt  time.Time  `json:"created_at"`
}

// FanOutReport summarises one notification batch.
type FanOutReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (r *FanOutReport) Add(other FanOutReport) {
	r.Sent += other.Sent
	r.Failed += other.Failed
}
