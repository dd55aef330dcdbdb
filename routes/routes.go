package routes

import (
	"net/http"

	"newspaper/app"
	"newspaper/handlers"
	"newspaper/middleware"
	"newspaper/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(a *app.App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(a.Logger), middleware.CORS())

	authHandler := handlers.NewAuthHandler(a.AuthService, a.PostService, a.Helper)
	newsHandler := handlers.NewPostHandler(a.PostService, models.PostTypeNews, a.Helper)
	articleHandler := handlers.NewPostHandler(a.PostService, models.PostTypeArticle, a.Helper)
	postHandler := handlers.NewPostHandler(a.PostService, "", a.Helper)
	categoryHandler := handlers.NewCategoryHandler(a.CategoryService, a.SubscriptionService, a.Helper)
	commentHandler := handlers.NewCommentHandler(a.CommentService, a.Helper)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(a.Config.JWTKey())

	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		v1.GET("/profile", auth, authHandler.GetProfile)
		v1.GET("/profile/limits", auth, authHandler.GetPostingLimits)
		v1.POST("/become-author", auth, authHandler.BecomeAuthor)

		postRoutes(v1.Group("/news"), newsHandler, auth)
		postRoutes(v1.Group("/articles"), articleHandler, auth)

		posts := v1.Group("/posts")
		{
			posts.GET("", postHandler.GetPosts)
			posts.GET("/:id", postHandler.GetPost)
			posts.GET("/:id/comments", commentHandler.GetComments)
			posts.POST("/:id/comments", auth, middleware.RequireCapability(models.CapComment), commentHandler.CreateComment)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.POST("", auth, middleware.RequireCapability(models.CapManageCategories), categoryHandler.CreateCategory)
			categories.POST("/:id/subscribe", auth, middleware.RequireCapability(models.CapSubscribe), categoryHandler.Subscribe)
			categories.POST("/:id/unsubscribe", auth, middleware.RequireCapability(models.CapSubscribe), categoryHandler.Unsubscribe)
		}

		v1.GET("/subscriptions", auth, middleware.RequireCapability(models.CapSubscribe), categoryHandler.GetSubscriptions)
	}

	return router
}

func postRoutes(group *gin.RouterGroup, h *handlers.PostHandler, auth gin.HandlerFunc) {
	group.GET("", h.GetPosts)
	group.GET("/:id", h.GetPost)
	group.POST("", auth, middleware.RequireCapability(models.CapAddPost), h.CreatePost)
	group.PUT("/:id", auth, middleware.RequireCapability(models.CapChangePost), h.UpdatePost)
	group.DELETE("/:id", auth, middleware.RequireCapability(models.CapDeletePost), h.DeletePost)
}
