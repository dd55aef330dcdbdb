package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"newspaper/mailer"
	"newspaper/metrics"
	"newspaper/models"
	"newspaper/repositories"
)

// DigestWindow is how far back the weekly digest looks for articles.
const DigestWindow = 7 * 24 * time.Hour

const (
	emailKindPost   = "post"
	emailKindDigest = "digest"
)

type NotificationService interface {
	Notifier
	// SendWeeklyDigest mails every category's subscribers the articles published in that category
	// during the last DigestWindow. Nothing records what was sent, so re-running sends again.
	SendWeeklyDigest(ctx context.Context) (models.FanOutReport, error)
}

type notificationService struct {
	postRepo repositories.PostRepository
	subRepo  repositories.SubscriptionRepository
	renderer *mailer.Renderer
	sender   mailer.Sender
	log      *slog.Logger
	dedupe   bool
	now      func() time.Time
}

type NotificationOptions struct {
	// DedupeSubscribers sends one new-post email per user even when several of the
	// post's categories share that subscriber.
	DedupeSubscribers bool
	Now               func() time.Time
}

func NewNotificationService(
	postRepo repositories.PostRepository,
	subRepo repositories.SubscriptionRepository,
	renderer *mailer.Renderer,
	sender mailer.Sender,
	log *slog.Logger,
	opts NotificationOptions,
) NotificationService {
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	return &notificationService{
		postRepo: postRepo,
		subRepo:  subRepo,
		renderer: renderer,
		sender:   sender,
		log:      log,
		dedupe:   opts.DedupeSubscribers,
		now:      func() time.Time { return clock().UTC() },
	}
}

// NotifyNewPost sends one email per subscription of each given category. Failures are logged and
// counted; they never stop the batch.
func (s *notificationService) NotifyNewPost(ctx context.Context, post *models.Post, categories []models.Category) models.FanOutReport {
	var report models.FanOutReport

	subsByCategory := make(map[uint][]models.Subscription, len(categories))
	for _, category := range categories {
		subs, err := s.subRepo.GetByCategory(ctx, category.ID)
		if err != nil {
			s.log.Error("load subscribers", "category_id", category.ID, "error", err)
			continue
		}
		subsByCategory[category.ID] = subs
	}

	for _, user := range planPostNotifications(categories, subsByCategory, s.dedupe) {
		if ctx.Err() != nil {
			s.log.Warn("post notification cancelled", "post_id", post.ID, "error", ctx.Err())
			break
		}
		msg, err := s.renderer.NewPost(user, *post)
		if err == nil {
			err = s.sender.Send(ctx, msg)
		}
		report.Add(s.record(emailKindPost, user, err))
	}
	return report
}

func (s *notificationService) SendWeeklyDigest(ctx context.Context) (models.FanOutReport, error) {
	var report models.FanOutReport

	since := s.now().Add(-DigestWindow)
	posts, err := s.postRepo.GetSince(ctx, models.PostTypeArticle, since)
	if err != nil {
		return report, fmt.Errorf("load articles: %w", err)
	}
	if len(posts) == 0 {
		s.log.Info("no new articles for weekly digest", "since", since)
		return report, nil
	}

	var errs []error
	for _, group := range groupArticlesByCategory(posts) {
		subs, err := s.subRepo.GetByCategory(ctx, group.Category.ID)
		if err != nil {
			s.log.Error("load subscribers", "category_id", group.Category.ID, "error", err)
			errs = append(errs, fmt.Errorf("category %d: %w", group.Category.ID, err))
			continue
		}

		for _, sub := range subs {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			msg, err := s.renderer.WeeklyDigest(sub.User, group.Category, group.Posts, since)
			if err == nil {
				err = s.sender.Send(ctx, msg)
			}
			report.Add(s.record(emailKindDigest, sub.User, err))
		}
	}

	s.log.Info("weekly digest finished", "sent", report.Sent, "failed", report.Failed)
	return report, errors.Join(errs...)
}

func (s *notificationService) record(kind string, user models.User, err error) models.FanOutReport {
	metrics.RecordEmail(kind, err)
	if err != nil {
		s.log.Error("send email", "kind", kind, "user_id", user.ID, "error", err)
		return models.FanOutReport{Failed: 1}
	}
	s.log.Debug("email sent", "kind", kind, "user_id", user.ID)
	return models.FanOutReport{Sent: 1}
}

// planPostNotifications lists the recipients in category order, then subscription order.
func planPostNotifications(categories []models.Category, subsByCategory map[uint][]models.Subscription, dedupe bool) []models.User {
	var recipients []models.User
	seen := map[uint]bool{}
	for _, category := range categories {
		for _, sub := range subsByCategory[category.ID] {
			if dedupe {
				if seen[sub.UserID] {
					continue
				}
				seen[sub.UserID] = true
			}
			recipients = append(recipients, sub.User)
		}
	}
	return recipients
}

type digestGroup struct {
	Category models.Category
	Posts    []models.Post
}

// groupArticlesByCategory puts each post into a group per category it belongs to, keeping the
// input order inside a group. Groups are ordered by category id.
func groupArticlesByCategory(posts []models.Post) []digestGroup {
	index := map[uint]int{}
	inGroup := map[[2]uint]bool{}
	var groups []digestGroup

	for _, post := range posts {
		for _, category := range post.Categories {
			i, ok := index[category.ID]
			if !ok {
				i = len(groups)
				index[category.ID] = i
				groups = append(groups, digestGroup{Category: category})
			}
			key := [2]uint{category.ID, post.ID}
			if inGroup[key] {
				continue
			}
			inGroup[key] = true
			groups[i].Posts = append(groups[i].Posts, post)
		}
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].Category.ID < groups[b].Category.ID })
	return groups
}
