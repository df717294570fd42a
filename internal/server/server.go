package server

import (
	"context"
	"net/http"

	"stallbook/internal/auth"
	"stallbook/internal/booking"
	"stallbook/internal/config"
	"stallbook/internal/notify"
	"stallbook/internal/provider"
	"stallbook/internal/review"
	"stallbook/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	providerRepo := provider.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	reviewRepo := review.NewRepository(db)

	bookingService := booking.NewService(bookingRepo, providerRepo, notifier, cfg.TravelSpeedKmh)

	userHandler := user.NewHandler(userRepo, cfg.JWTSecret)
	providerHandler := provider.NewHandler(providerRepo)
	bookingHandler := booking.NewHandler(bookingService, providerRepo)
	reviewHandler := review.NewHandler(reviewRepo)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	// The provider directory is browsable without an account.
	directory := router.Group("/providers")
	{
		directory.GET("", providerHandler.List)
		directory.GET("/:providerID", providerHandler.Get)
		directory.GET("/:providerID/services", providerHandler.ListServices)
		directory.GET("/:providerID/reviews", reviewHandler.ListByProvider)
		directory.GET("/:providerID/rating", reviewHandler.RatingSummary)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.PATCH("/bookings/:bookingID/status", bookingHandler.UpdateStatus)
		protected.DELETE("/bookings/:bookingID", bookingHandler.Delete)

		protected.POST("/reviews", reviewHandler.Create)
		protected.PUT("/reviews/:reviewID", reviewHandler.Update)
		protected.DELETE("/reviews/:reviewID", reviewHandler.Delete)

		protected.PUT("/providers/:providerID", providerHandler.UpdateProfile)
	}

	providerOnly := router.Group("/provider")
	providerOnly.Use(authMiddleware, auth.RequireRole(auth.RoleProvider))
	{
		providerOnly.POST("/profile", providerHandler.CreateProfile)
		providerOnly.GET("/bookings", bookingHandler.ListForProvider)
		providerOnly.POST("/bookings", bookingHandler.CreateManual)
		providerOnly.POST("/services", providerHandler.CreateService)
		providerOnly.DELETE("/services/:serviceID", providerHandler.DeleteService)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/notifications/queue", NotificationQueue(notifier))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
