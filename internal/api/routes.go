package api

import (
	"porchlight/internal/api/middleware"
	"porchlight/internal/config"
	"porchlight/internal/handlers"
	"porchlight/internal/models"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	rateLimiter := middleware.RateLimiter(middleware.RateLimitConfig{
		RedisClient: s.redis,
	})

	authHandler := handlers.NewAuthHandler(s.db, config.FirebaseAuth(), s.config.Session)
	chatHandler := handlers.NewChatHandler(s.chats, s.tasks)
	formsHandler := handlers.NewFormsHandler(s.db, s.goformz, s.tasks)
	propertyHandler := handlers.NewPropertyHandler(s.db, s.storage)

	// Public auth endpoints, rate limited by IP
	api.POST("/auth/sign-up", authHandler.SignUp, rateLimiter)
	api.POST("/auth/log-in", authHandler.LogIn, rateLimiter)
	api.POST("/auth/log-out", authHandler.LogOut, rateLimiter)

	// Everything below requires a verified Firebase identity. The limiter
	// runs after auth so authenticated traffic is keyed per user, not per IP.
	auth := middleware.NewAuthMiddleware(config.FirebaseAuth(), s.config.Session.CookieName)
	protected := api.Group("", auth.Middleware(), rateLimiter)

	protected.GET("/auth/me", authHandler.GetMe)

	protected.GET("/history/:chatID", chatHandler.History)
	protected.POST("/chat/messageSent", chatHandler.MessageSent)
	protected.GET("/notifications", chatHandler.Notifications)
	protected.POST("/notifications/:id/read", chatHandler.MarkNotificationRead)

	protected.GET("/properties", propertyHandler.List)
	protected.GET("/properties/export", propertyHandler.Export, middleware.RequireRoles(models.UserRoleAdmin))
	protected.GET("/properties/:id", propertyHandler.Get)
	protected.POST("/properties", propertyHandler.Create, middleware.RequirePropertyWrite())
	protected.PUT("/properties/:id", propertyHandler.Update, middleware.RequirePropertyWrite())
	protected.DELETE("/properties/:id", propertyHandler.Delete, middleware.RequirePropertyWrite())
	protected.POST("/properties/:id/photos", propertyHandler.UploadPhoto, middleware.RequirePropertyWrite())

	protected.GET("/forms/templates", formsHandler.ListTemplates)
	protected.GET("/forms", formsHandler.ListForms)
	protected.GET("/forms/:id", formsHandler.GetForm)
	protected.POST("/forms/:id/archive", formsHandler.ArchiveForm)
	protected.GET("/forms/archives/:id", formsHandler.GetArchive)
}
