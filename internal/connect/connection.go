package connect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/printer-admin/internal/config"
	"github.com/joshua-takyi/printer-admin/internal/realtime"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// supabase init
func InitSupabase(cfg *config.Config) (*supabase.Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

// mongo init; returns nil without error when no URI is configured
func MongoDBConnect(cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	if !cfg.MongoEnabled() {
		logger.Info("MongoDB not configured, audit trail disabled")
		return nil, nil
	}
	fullURI := strings.Replace(cfg.MongoDBURI, "<password>", cfg.MongoDBPassword, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fullURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("MongoDB connected successfully")
	return client, nil
}

func MongoDBDisconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

// CloudinaryCredentials returns nil without error when Cloudinary is not configured;
// gallery images are then stored by URL only.
func CloudinaryCredentials(cfg *config.Config, logger *slog.Logger) (*cloudinary.Cloudinary, error) {
	if !cfg.CloudinaryEnabled() {
		logger.Info("Cloudinary not configured, gallery uploads disabled")
		return nil, nil
	}
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	logger.Info("Cloudinary connected successfully")
	return cld, nil
}

// RealtimeFeed opens the Supabase change feed, or an in-process feed when realtime
// is disabled. The returned close func is always safe to call.
func RealtimeFeed(ctx context.Context, cfg *config.Config, logger *slog.Logger) (realtime.Feed, func() error, error) {
	if !cfg.RealtimeEnabled {
		logger.Info("Realtime disabled, using in-process feed")
		return realtime.NewMemoryFeed(), func() error { return nil }, nil
	}
	feed, err := realtime.DialSupabase(ctx, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.HeartbeatInterval, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open realtime feed: %w", err)
	}
	return feed, feed.Close, nil
}
