package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newspaper/models"
	"newspaper/repositories"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, actor models.Actor, req models.CreateCategoryRequest) (*models.Category, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, actor models.Actor, req models.CreateCategoryRequest) (*models.Category, error) {
	if !actor.Can(models.CapManageCategories) {
		return nil, fmt.Errorf("%s: %w", models.CapManageCategories, models.ErrForbidden)
	}

	name := strings.TrimSpace(req.Name)

	// Check if category already exists
	_, err := s.categoryRepo.GetByName(ctx, name)
	if err == nil {
		return nil, fmt.Errorf("category %q: %w", name, models.ErrConflict)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}
