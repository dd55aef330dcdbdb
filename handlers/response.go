package handlers

import (
	"strconv"

	"newspaper/helper"
	"newspaper/models"

	"github.com/gin-gonic/gin"
)

// toPostResponse flattens a post for the API and runs the censor filter over its text.
func toPostResponse(post *models.Post) models.PostResponse {
	categories := post.Categories
	if categories == nil {
		categories = []models.Category{}
	}
	return models.PostResponse{
		ID:         post.ID,
		PostType:   post.PostType,
		Title:      helper.Censor(post.Title),
		Content:    helper.Censor(post.Content),
		AuthorID:   post.AuthorID,
		AuthorName: post.Author.User.Username,
		Categories: categories,
		CreatedAt:  post.CreatedAt,
	}
}

func toPostResponses(posts []models.Post) []models.PostResponse {
	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
