package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizbridge/acquisition-backend/internal/config"
	"github.com/bizbridge/acquisition-backend/internal/http/handlers"
	"github.com/bizbridge/acquisition-backend/internal/http/middleware"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	businessHandler *handlers.BusinessHandler,
	matchHandler *handlers.MatchHandler,
	dealHandler *handlers.DealHandler,
	stageHandler *handlers.StageHandler,
	conversationHandler *handlers.ConversationHandler,
	favoriteHandler *handlers.FavoriteHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Публичные маршруты: каталог и WebSocket (токен передаётся в query)
	api.GET("/businesses", businessHandler.List)
	api.GET("/businesses/:id", middleware.UUIDValidator("id"), businessHandler.Get)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateMe)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), profileHandler.GetUser)

		// Каталог бизнесов (управление своими объявлениями)
		protected.GET("/businesses/my", businessHandler.ListMine)
		protected.POST("/businesses", middleware.RequireRole(models.RoleSeller), businessHandler.Create)
		protected.PUT("/businesses/:id", middleware.UUIDValidator("id"), businessHandler.Update)
		protected.PATCH("/businesses/:id/status", middleware.UUIDValidator("id"), businessHandler.UpdateStatus)
		protected.DELETE("/businesses/:id", middleware.UUIDValidator("id"), businessHandler.Delete)
		protected.POST("/businesses/:id/images", middleware.UUIDValidator("id"), businessHandler.AddImage)
		protected.DELETE("/businesses/:id/images/:imageId", middleware.UUIDValidator("id"), middleware.UUIDValidator("imageId"), businessHandler.DeleteImage)

		// Избранное
		protected.GET("/favorites", favoriteHandler.List)
		protected.PUT("/favorites/:businessId", middleware.UUIDValidator("businessId"), favoriteHandler.Add)
		protected.DELETE("/favorites/:businessId", middleware.UUIDValidator("businessId"), favoriteHandler.Remove)

		// Заявки покупателей
		protected.POST("/matches", middleware.RequireRole(models.RoleBuyer), matchHandler.Create)
		protected.GET("/matches", matchHandler.List)
		protected.POST("/matches/:id/accept", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleSeller), matchHandler.Accept)
		protected.POST("/matches/:id/decline", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleSeller), matchHandler.Decline)

		// Сделки
		protected.GET("/deals", dealHandler.List)
		protected.GET("/deals/:id", middleware.UUIDValidator("id"), dealHandler.Get)
		protected.PATCH("/deals/:id/status", middleware.UUIDValidator("id"), dealHandler.UpdateStatus)
		protected.PATCH("/deals/:id/terms", middleware.UUIDValidator("id"), dealHandler.UpdateTerms)
		protected.POST("/deals/:id/advance", middleware.UUIDValidator("id"), dealHandler.AdvanceStage)
		protected.POST("/deals/:id/team", middleware.UUIDValidator("id"), dealHandler.AddTeamMember)
		protected.POST("/deals/:id/key-dates", middleware.UUIDValidator("id"), dealHandler.AddKeyDate)
		protected.GET("/deals/:id/activity", middleware.UUIDValidator("id"), dealHandler.ListActivity)
		protected.GET("/deals/:id/conversation", middleware.UUIDValidator("id"), conversationHandler.GetByDeal)

		// Этапы сделки
		protected.GET("/deals/:id/stages/:stage", middleware.UUIDValidator("id"), stageHandler.Get)
		protected.PATCH("/deals/:id/stages/:stage/checklist/:itemId", middleware.UUIDValidator("id"), middleware.UUIDValidator("itemId"), stageHandler.ToggleChecklistItem)
		protected.POST("/deals/:id/stages/:stage/documents", middleware.UUIDValidator("id"), stageHandler.UploadDocument)
		protected.PATCH("/deals/:id/stages/:stage/documents/:docId/status", middleware.UUIDValidator("id"), middleware.UUIDValidator("docId"), stageHandler.UpdateDocumentStatus)
		protected.POST("/deals/:id/stages/:stage/comments", middleware.UUIDValidator("id"), stageHandler.AddComment)
		protected.PATCH("/deals/:id/stages/:stage/comments/:commentId", middleware.UUIDValidator("id"), middleware.UUIDValidator("commentId"), stageHandler.EditComment)
		protected.POST("/deals/:id/stages/:stage/approvals", middleware.UUIDValidator("id"), stageHandler.CreateApproval)
		protected.POST("/deals/:id/stages/:stage/approvals/:approvalId", middleware.UUIDValidator("id"), middleware.UUIDValidator("approvalId"), stageHandler.ActOnApproval)

		// Переписки
		protected.GET("/conversations", conversationHandler.List)
		protected.GET("/conversations/:id", middleware.UUIDValidator("id"), conversationHandler.Get)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.ListMessages)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.SendMessage)

		// Уведомления
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)

		// Медиа
		protected.POST("/media", mediaHandler.Upload)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
	}

	return r
}
