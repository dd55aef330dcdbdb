package handlers

import (
	"newspaper/helper"
	"newspaper/middleware"
	"newspaper/models"
	"newspaper/services"

	"github.com/gin-gonic/gin"
)

// PostHandler serves one post type. An empty type serves read-only routes over every post.
type PostHandler struct {
	postService services.PostService
	postType    models.PostType
	Helper      *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, postType models.PostType, h *helper.HTTPHelper) *PostHandler {
	return &PostHandler{postService: postService, postType: postType, Helper: h}
}

func (h *PostHandler) noun() string {
	switch h.postType {
	case models.PostTypeNews:
		return "News"
	case models.PostTypeArticle:
		return "Article"
	default:
		return "Post"
	}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	post, err := h.postService.Create(c.Request.Context(), actor, h.postType, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, h.noun()+" created", toPostResponse(post))
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	var params models.PostListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters", err.Error())
		return
	}
	params.PostType = h.postType

	posts, total, err := h.postService.List(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	page, limit := params.Paging()

	h.Helper.SendSuccess(c, h.noun()+" list loaded", map[string]interface{}{
		"items":      toPostResponses(posts),
		"pagination": h.Helper.GeneratePaging(c, limit, page, int(total)),
	})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	post, err := h.postService.Get(c.Request.Context(), h.postType, id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, h.noun()+" loaded", toPostResponse(post))
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	post, err := h.postService.Update(c.Request.Context(), actor, h.postType, id, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, h.noun()+" updated", toPostResponse(post))
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.postService.Delete(c.Request.Context(), actor, h.postType, id); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, h.noun()+" deleted", h.Helper.EmptyJsonMap())
}
