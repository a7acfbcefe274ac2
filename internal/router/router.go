package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkwell/internal/auth"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

type Deps struct {
	Comments      *services.CommentService
	Likes         *services.LikeService
	Notifications *services.NotificationService
	Posts         *services.PostService
	Accounts      *services.AccountService
	Signer        *auth.Signer
	Logger        *slog.Logger
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Accounts)
	postHandler := handlers.NewPostHandler(d.Posts)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	likeHandler := handlers.NewLikeHandler(d.Likes)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)
	adminHandler := handlers.NewAdminHandler(d.Comments)

	r.GET("/healthz", handlers.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/signup", authHandler.Signup)
	r.POST("/signin", authHandler.Signin)
	r.POST("/get-post", postHandler.Get)
	r.POST("/get-post-comments", commentHandler.ListForPost)
	r.POST("/get-replies", commentHandler.Replies)

	// Bearer token required
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(d.Signer))
	{
		authorized.POST("/create-post", postHandler.Create)
		authorized.POST("/add-comment", commentHandler.Add)
		authorized.POST("/delete-comment", commentHandler.Delete)
		authorized.POST("/like-post", likeHandler.Toggle)
		authorized.POST("/isliked-by-user", likeHandler.IsLiked)
		authorized.POST("/notifications", notificationHandler.List)
		authorized.POST("/all-notifications-count", notificationHandler.Count)
		authorized.GET("/new-notification", notificationHandler.New)
		authorized.POST("/new-notification", notificationHandler.New)
	}

	admin := r.Group("/")
	admin.Use(middleware.AuthRequired(d.Signer), middleware.AdminRequired())
	{
		admin.POST("/reconcile-post-counters", adminHandler.ReconcileCounters)
	}
}
