package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/printer-admin/internal/config"
	"github.com/joshua-takyi/printer-admin/internal/helpers"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
	"github.com/joshua-takyi/printer-admin/internal/realtime"
	"github.com/joshua-takyi/printer-admin/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	Notifications  *notify.Hub
	TokenValidator *helpers.TokenValidator
	Listener       *realtime.Listener

	UserService      *services.UserService
	DashboardService *services.DashboardService
	BookingWorkflow  *services.BookingWorkflow
	CatalogService   *services.CatalogService
	ReportService    *services.ReportService
}

// NewContainer creates a new dependency injection container. mongoDBClient, cld and
// telegram may be nil; the features they back are then disabled.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	cld *cloudinary.Cloudinary,
	telegram notify.Notifier,
	feed realtime.Feed,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)

	var audit models.AuditRepo
	if mongoDBClient != nil {
		audit = models.MongodbNewRepo(mongoDBClient, "")
	}
	var assets helpers.AssetStore
	if cld != nil {
		assets = helpers.NewCloudinaryAssets(cld)
	}

	hub := notify.NewHub(notify.DefaultHistory, logger)
	notifier := notify.Multi{hub}
	if telegram != nil {
		notifier = append(notifier, telegram)
	}

	dashboard := services.NewDashboardService(supa, supa, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		SupabaseClient:   supabaseClient,
		MongoDBClient:    mongoDBClient,
		Notifications:    hub,
		TokenValidator:   helpers.NewTokenValidator(cfg.SupabaseURL, cfg.IsDevelopment(), logger),
		Listener:         realtime.NewListener(feed, logger, dashboard.Bindings()...),
		UserService:      services.NewUserService(supa),
		DashboardService: dashboard,
		BookingWorkflow:  services.NewBookingWorkflow(supa, dashboard, notifier, audit, logger),
		CatalogService:   services.NewCatalogService(supa, dashboard, assets, logger),
		ReportService:    services.NewReportService(dashboard, audit, logger),
	}
}
