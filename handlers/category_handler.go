package handlers

import (
	"context"

	"newspaper/helper"
	"newspaper/middleware"
	"newspaper/models"
	"newspaper/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService     services.CategoryService
	subscriptionService services.SubscriptionService
	Helper              *helper.HTTPHelper
}

func NewCategoryHandler(categoryService services.CategoryService, subscriptionService services.SubscriptionService, h *helper.HTTPHelper) *CategoryHandler {
	return &CategoryHandler{
		categoryService:     categoryService,
		subscriptionService: subscriptionService,
		Helper:              h,
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateCategoryRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), actor, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Category created", category)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Categories loaded", categories)
}

func (h *CategoryHandler) Subscribe(c *gin.Context) {
	h.changeSubscription(c, h.subscriptionService.Subscribe)
}

func (h *CategoryHandler) Unsubscribe(c *gin.Context) {
	h.changeSubscription(c, h.subscriptionService.Unsubscribe)
}

func (h *CategoryHandler) changeSubscription(c *gin.Context, change func(context.Context, models.Actor, uint) (*models.SubscriptionResult, error)) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid category ID", h.Helper.EmptyJsonMap())
		return
	}

	result, err := change(c.Request.Context(), actor, id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, result.Message, result)
}

func (h *CategoryHandler) GetSubscriptions(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	subs, err := h.subscriptionService.GetSubscriptions(c.Request.Context(), actor)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Subscriptions loaded", subs)
}
