package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/container"
	"github.com/joshua-takyi/tryfield/internal/handlers"
	"github.com/joshua-takyi/tryfield/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := c.Config.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{c.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "tryfield-api",
		})
	})

	auth := v1.Group("/auth")
	{
		auth.GET("/signin-url", handlers.SignInURLHandler(c.UserService, c.Config.FrontendURL+"/auth/callback"))
		auth.POST("/session", handlers.SessionHandler(c.UserService, secure))
		auth.POST("/refresh", handlers.RefreshHandler(c.UserService, secure))
		auth.POST("/logout", handlers.LogoutHandler(secure))
	}

	// Readable without signing in; the viewer still matters for privacy filtering.
	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(c.Tokens, c.UserService, secure, c.Logger))
	{
		public.GET("/tries", handlers.ListTriesHandler(c.TryService))
		public.GET("/tries/:id", handlers.GetTryHandler(c.TryService))
		public.GET("/tries/:id/participations", handlers.ListParticipationsHandler(c.ParticipationService))
		public.GET("/tries/:id/comments", handlers.ListCommentsHandler(c.CommentService))
		public.GET("/tries/:id/reviews", handlers.TryReviewsHandler(c.ReviewService))
		public.GET("/users/:id", handlers.GetProfileHandler(c.UserService))
		public.GET("/users/:id/ratings", handlers.UserRatingsHandler(c.ReviewService))
		public.GET("/users/:id/rating-summary", handlers.RatingSummaryHandler(c.ReviewService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(c.Tokens, c.UserService, secure, c.Logger))
	limited := c.MessageRate.Middleware()

	me := protected.Group("/me")
	{
		me.GET("", handlers.MeHandler(c.UserService))
		me.PATCH("", handlers.UpdateProfileHandler(c.UserService))
		me.POST("/devices", handlers.RegisterDeviceTokenHandler(c.UserService))
		me.GET("/privacy", handlers.GetPrivacyHandler(c.PrivacyService))
		me.PUT("/privacy", handlers.UpdatePrivacyHandler(c.PrivacyService))
		me.GET("/participations", handlers.MyParticipationsHandler(c.ParticipationService))
		me.GET("/draft", handlers.LoadDraftHandler(c.DraftService))
		me.PUT("/draft", handlers.SaveDraftHandler(c.DraftService))
		me.DELETE("/draft", handlers.DeleteDraftHandler(c.DraftService))
	}

	tries := protected.Group("/tries")
	{
		tries.POST("", handlers.CreateTryHandler(c.TryService))
		tries.PATCH("/:id", handlers.UpdateTryHandler(c.TryService))
		tries.DELETE("/:id", handlers.DeleteTryHandler(c.TryService))
		tries.POST("/:id/complete", handlers.CompleteTryHandler(c.TryService))
		tries.POST("/:id/participations", handlers.RequestParticipationHandler(c.ParticipationService))
		tries.GET("/:id/participations/me", handlers.MyParticipationHandler(c.ParticipationService))
		tries.GET("/:id/chat", handlers.ListChatMessagesHandler(c.ChatService))
		tries.POST("/:id/chat", limited, handlers.PostChatMessageHandler(c.ChatService))
		tries.POST("/:id/comments", limited, handlers.AddCommentHandler(c.CommentService))
		tries.POST("/:id/reviews", handlers.SubmitReviewHandler(c.ReviewService))
		tries.POST("/:id/ratings", handlers.RateUserHandler(c.ReviewService))
	}

	participations := protected.Group("/participations")
	{
		participations.POST("/:id/approve", handlers.ApproveParticipationHandler(c.ParticipationService))
		participations.POST("/:id/reject", handlers.RejectParticipationHandler(c.ParticipationService))
		participations.POST("/:id/withdraw", handlers.WithdrawParticipationHandler(c.ParticipationService))
	}

	protected.DELETE("/comments/:id", handlers.DeleteCommentHandler(c.CommentService))
	protected.POST("/uploads", handlers.UploadImageHandler(c.UploadService))

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handlers.ListNotificationsHandler(c.NotificationService))
		notifications.GET("/unread-count", handlers.UnreadCountHandler(c.NotificationService))
		notifications.POST("/read-all", handlers.MarkAllNotificationsReadHandler(c.NotificationService))
		notifications.POST("/:id/read", handlers.MarkNotificationReadHandler(c.NotificationService))
	}

	dm := protected.Group("/dm/rooms")
	{
		dm.POST("", handlers.OpenRoomHandler(c.DMService))
		dm.GET("", handlers.ListRoomsHandler(c.DMService))
		dm.GET("/:id/messages", handlers.ListDirectMessagesHandler(c.DMService))
		dm.POST("/:id/messages", limited, handlers.SendDirectMessageHandler(c.DMService))
		dm.POST("/:id/read", handlers.MarkRoomReadHandler(c.DMService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/notifications/bulk", handlers.SendBulkHandler(c.NotificationService))
	}

	protected.GET("/live", handlers.LiveHandler(c.Hub, c.Config.FrontendURL, c.Logger))

	return r
}
