package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"newspaper/helper"
	"newspaper/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	newPostTemplate = "new_post_notification.html"
	digestTemplate  = "weekly_digest.html"

	// PreviewLength is how many characters of the body go into a new-post email.
	PreviewLength = 50
)

// Renderer builds the notification emails. Titles and bodies pass through the censor filter.
type Renderer struct {
	templates *template.Template
	domain    string
}

func NewRenderer(domain string) (*Renderer, error) {
	tmpl, err := template.New("mail").Funcs(template.FuncMap{
		"censor":   helper.Censor,
		"truncate": helper.Truncate,
		"date":     func(t time.Time) string { return t.Format("02.01.2006") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{templates: tmpl, domain: domain}, nil
}

type newPostData struct {
	Username string
	Noun     string
	Post     models.Post
	Domain   string
	Preview  int
}

// NewPost renders the email sent to a subscriber when a post is published into their category.
func (r *Renderer) NewPost(user models.User, post models.Post) (Message, error) {
	noun := post.PostType.Noun()
	html, err := r.execute(newPostTemplate, newPostData{
		Username: user.Username,
		Noun:     noun,
		Post:     post,
		Domain:   r.domain,
		Preview:  PreviewLength,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       user.Email,
		Subject:  fmt.Sprintf("New %s: %s", noun, helper.Censor(post.Title)),
		TextBody: preview(helper.Censor(post.Content)),
		HTMLBody: html,
	}, nil
}

type digestData struct {
	User     models.User
	Category models.Category
	Posts    []models.Post
	Since    time.Time
	Domain   string
}

// WeeklyDigest renders the aggregate email listing a category's articles since the given time.
func (r *Renderer) WeeklyDigest(user models.User, category models.Category, posts []models.Post, since time.Time) (Message, error) {
	html, err := r.execute(digestTemplate, digestData{
		User:     user,
		Category: category,
		Posts:    posts,
		Since:    since,
		Domain:   r.domain,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Weekly article digest for category %q", category.Name),
		TextBody: fmt.Sprintf("Hello, %s! In the last week %d new articles appeared in category %q.",
			user.Username, len(posts), category.Name),
		HTMLBody: html,
	}, nil
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// preview is the first PreviewLength characters of content followed by "...", always.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	return string(runes) + "..."
}
