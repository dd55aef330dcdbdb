// Package app wires configuration, storage and services into one container shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newspaper/config"
	"newspaper/helper"
	"newspaper/mailer"
	"newspaper/repositories"
	"newspaper/scheduler"
	"newspaper/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	// Redis is nil when REDIS_URL is unset or unreachable.
	Redis  *redis.Client
	Helper *helper.HTTPHelper

	JobExecutions repositories.JobExecutionRepository

	AuthService         services.AuthService
	PostService         services.PostService
	NotificationService services.NotificationService
	CategoryService     services.CategoryService
	SubscriptionService services.SubscriptionService
	CommentService      services.CommentService
}

// New connects to the database (and Redis when configured) and builds the services.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := NewWithDB(cfg, log, db, newSender(cfg, log))
	if err != nil {
		return nil, err
	}
	a.Redis = connectRedis(cfg.RedisURL, log)
	return a, nil
}

// NewWithDB builds the services on an already migrated database.
func NewWithDB(cfg *config.Config, log *slog.Logger, db *gorm.DB, sender mailer.Sender) (*App, error) {
	renderer, err := mailer.NewRenderer(cfg.SiteDomain)
	if err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	postRepo := repositories.NewPostRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	h := helper.NewHTTPHelper()

	notifications := services.NewNotificationService(postRepo, subRepo, renderer, sender, log,
		services.NotificationOptions{DedupeSubscribers: cfg.NotifyDedupeSubscribers})

	return &App{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		Helper:        h,
		JobExecutions: repositories.NewJobExecutionRepository(db),

		AuthService: services.NewAuthService(userRepo, authorRepo, cfg, log),
		PostService: services.NewPostService(services.PostServiceDeps{
			PostRepo:     postRepo,
			AuthorRepo:   authorRepo,
			CategoryRepo: categoryRepo,
			Notifier:     notifications,
			Validate:     h.Validate,
			Translator:   h.Translator,
			Logger:       log,
		}),
		NotificationService: notifications,
		CategoryService:     services.NewCategoryService(categoryRepo),
		SubscriptionService: services.NewSubscriptionService(subRepo, categoryRepo, log),
		CommentService:      services.NewCommentService(commentRepo, postRepo),
	}, nil
}

// BaseScheduler returns a scheduler with no jobs, sharing job locks through Redis when available.
func (a *App) BaseScheduler() *scheduler.Scheduler {
	var locker scheduler.Locker = scheduler.NewLocalLocker()
	if a.Redis != nil {
		locker = scheduler.NewRedisLocker(a.Redis, "newspaper:")
	}

	return scheduler.New(scheduler.Options{
		Location:   a.Config.Location(),
		Locker:     locker,
		Executions: a.JobExecutions,
		Logger:     a.Logger,
	})
}

// NewScheduler registers the newsletter, heartbeat and cleanup jobs.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	s := a.BaseScheduler()

	jobs := []scheduler.Job{
		scheduler.WeeklyNewsletterJob(a.Config.NewsletterSchedule, a.NotificationService, a.Logger),
		scheduler.HeartbeatJob(a.Config.HeartbeatSchedule, a.Logger),
		scheduler.CleanupJob(a.Config.CleanupSchedule, a.JobExecutions, a.Config.JobRetention(), a.Logger),
	}
	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func newSender(cfg *config.Config, log *slog.Logger) mailer.Sender {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set, emails will only be logged")
		return mailer.LogSender{Logger: log}
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.DefaultFromEmail,
	})
}

func connectRedis(url string, log *slog.Logger) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-process job locks", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process job locks", "error", fmt.Errorf("ping: %w", err))
		_ = client.Close()
		return nil
	}

	log.Info("redis connected")
	return client
}
