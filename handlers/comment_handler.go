package handlers

import (
	"newspaper/helper"
	"newspaper/middleware"
	"newspaper/models"
	"newspaper/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService services.CommentService
	Helper         *helper.HTTPHelper
}

func NewCommentHandler(commentService services.CommentService, h *helper.HTTPHelper) *CommentHandler {
	return &CommentHandler{commentService: commentService, Helper: h}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateCommentRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), actor, postID, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	comment.Text = helper.Censor(comment.Text)
	h.Helper.SendCreated(c, "Comment added", comment)
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	comments, err := h.commentService.GetComments(c.Request.Context(), postID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	for i := range comments {
		comments[i].Text = helper.Censor(comments[i].Text)
	}
	h.Helper.SendSuccess(c, "Comments loaded", comments)
}
