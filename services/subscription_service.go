package services

import (
	"context"
	"fmt"
	"log/slog"

	"newspaper/models"
	"newspaper/repositories"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, actor models.Actor, categoryID uint) (*models.SubscriptionResult, error)
	Unsubscribe(ctx context.Context, actor models.Actor, categoryID uint) (*models.SubscriptionResult, error)
	GetSubscriptions(ctx context.Context, actor models.Actor) ([]models.Subscription, error)
}

type subscriptionService struct {
	subRepo      repositories.SubscriptionRepository
	categoryRepo repositories.CategoryRepository
	log          *slog.Logger
}

func NewSubscriptionService(subRepo repositories.SubscriptionRepository, categoryRepo repositories.CategoryRepository, log *slog.Logger) SubscriptionService {
	return &subscriptionService{
		subRepo:      subRepo,
		categoryRepo: categoryRepo,
		log:          log,
	}
}

// Subscribe is idempotent: subscribing twice leaves a single subscription.
func (s *subscriptionService) Subscribe(ctx context.Context, actor models.Actor, categoryID uint) (*models.SubscriptionResult, error) {
	category, err := s.category(ctx, actor, categoryID)
	if err != nil {
		return nil, err
	}

	created, err := s.subRepo.Create(ctx, actor.UserID, category.ID)
	if err != nil {
		return nil, err
	}

	result := &models.SubscriptionResult{CategoryID: category.ID, Subscribed: true, Changed: created}
	if created {
		result.Message = fmt.Sprintf("You are now subscribed to %q.", category.Name)
		s.log.Info("subscribed", "user_id", actor.UserID, "category_id", category.ID)
	} else {
		result.Message = fmt.Sprintf("You are already subscribed to %q.", category.Name)
	}
	return result, nil
}

// Unsubscribe succeeds without changes when there is no subscription.
func (s *subscriptionService) Unsubscribe(ctx context.Context, actor models.Actor, categoryID uint) (*models.SubscriptionResult, error) {
	category, err := s.category(ctx, actor, categoryID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.subRepo.Delete(ctx, actor.UserID, category.ID)
	if err != nil {
		return nil, err
	}

	result := &models.SubscriptionResult{CategoryID: category.ID, Subscribed: false, Changed: deleted}
	if deleted {
		result.Message = fmt.Sprintf("You have unsubscribed from %q.", category.Name)
		s.log.Info("unsubscribed", "user_id", actor.UserID, "category_id", category.ID)
	} else {
		result.Message = fmt.Sprintf("You are already not subscribed to %q.", category.Name)
	}
	return result, nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, actor models.Actor) ([]models.Subscription, error) {
	if !actor.Can(models.CapSubscribe) {
		return nil, fmt.Errorf("%s: %w", models.CapSubscribe, models.ErrForbidden)
	}
	return s.subRepo.GetByUser(ctx, actor.UserID)
}

func (s *subscriptionService) category(ctx context.Context, actor models.Actor, categoryID uint) (*models.Category, error) {
	if !actor.Can(models.CapSubscribe) {
		return nil, fmt.Errorf("%s: %w", models.CapSubscribe, models.ErrForbidden)
	}
	return s.categoryRepo.GetByID(ctx, categoryID)
}
