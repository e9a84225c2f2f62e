package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/container"
	"github.com/joshua-takyi/printer-admin/internal/handlers"
	"github.com/joshua-takyi/printer-admin/internal/metrics"
	"github.com/joshua-takyi/printer-admin/internal/middleware"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secureCookies := cfg.IsProduction()
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst)

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health())

		// public routes
		v1.POST("/login", loginLimiter.Middleware(), handlers.Login(container.UserService, secureCookies))
		v1.POST("/logout", handlers.Logout(secureCookies))
	}

	protected := v1.Group("/")
	if cfg.AuthEnabled {
		protected.Use(middleware.AuthMiddleware(container.TokenValidator, container.UserService, secureCookies, container.Logger))
	} else {
		container.Logger.Warn("Authentication disabled, admin routes are open")
	}

	protected.GET("/me", handlers.Me())

	dashboardRoutes := protected.Group("/dashboard")
	{
		dashboardRoutes.GET("", handlers.GetDashboard(container.DashboardService))
		dashboardRoutes.GET("/tabs", handlers.ListTabs())
		dashboardRoutes.PUT("/tab", handlers.SetActiveTab(container.DashboardService))
		dashboardRoutes.POST("/refresh", handlers.RefreshDashboard(container.DashboardService))
		dashboardRoutes.POST("/bookings/:id/select", handlers.SelectBooking(container.DashboardService))
		dashboardRoutes.DELETE("/selection", handlers.CloseBookingDetail(container.DashboardService))
		dashboardRoutes.PUT("/cost-draft", handlers.SetCostDraft(container.DashboardService))
		dashboardRoutes.POST("/cost-draft/submit", handlers.SubmitCostDraft(container.BookingWorkflow))
		dashboardRoutes.GET("/events", handlers.StreamNotifications(container.Notifications))
	}

	protected.GET("/notifications", handlers.ListNotifications(container.Notifications))

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.GET("", handlers.ListBookings(container.DashboardService))
		bookingRoutes.GET("/recent", handlers.RecentBookings(container.DashboardService))
		bookingRoutes.GET("/statuses", handlers.ListStatuses())
		bookingRoutes.PATCH("/:id/status", handlers.ChangeBookingStatus(container.BookingWorkflow))
		bookingRoutes.PATCH("/:id/technician", handlers.AssignTechnician(container.BookingWorkflow))
		bookingRoutes.PATCH("/:id/actual-cost", handlers.UpdateActualCost(container.BookingWorkflow))
		bookingRoutes.GET("/:id/audit", handlers.BookingAudit(container.BookingWorkflow))
	}

	handlers.NewCatalogHandlers(container.DashboardService, container.CatalogService).Register(protected.Group("/catalog"))

	reportRoutes := protected.Group("/reports")
	{
		reportRoutes.GET("/stats", handlers.GetStats(container.ReportService))
		reportRoutes.GET("/bookings.xlsx", handlers.ExportBookings(container.ReportService))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse("Route not found"))
	})

	return r
}
