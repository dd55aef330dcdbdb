package handlers

import (
	"newspaper/helper"
	"newspaper/middleware"
	"newspaper/models"
	"newspaper/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	postService services.PostService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, postService services.PostService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, postService: postService, Helper: h}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Register success", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), actor.UserID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}

// GetPostingLimits reports how many posts of each type the caller published in the last 24 hours.
func (h *AuthHandler) GetPostingLimits(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	limits, err := h.postService.PostingLimits(c.Request.Context(), actor)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Posting limits loaded", limits)
}

func (h *AuthHandler) BecomeAuthor(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	response, err := h.authService.BecomeAuthor(c.Request.Context(), actor.UserID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "You are now an author", response)
}
