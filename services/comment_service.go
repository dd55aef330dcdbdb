package services

import (
	"context"
	"fmt"
	"strings"

	"newspaper/models"
	"newspaper/repositories"
)

type CommentService interface {
	CreateComment(ctx context.Context, actor models.Actor, postID uint, req models.CreateCommentRequest) (*models.Comment, error)
	GetComments(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *commentService) CreateComment(ctx context.Context, actor models.Actor, postID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	if !actor.Can(models.CapComment) {
		return nil, fmt.Errorf("%s: %w", models.CapComment, models.ErrForbidden)
	}
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: actor.UserID,
		Text:   strings.TrimSpace(req.Text),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) GetComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByPost(ctx, postID)
}
