package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/creatorlens/creatorlens-go/internal/config"
	"github.com/creatorlens/creatorlens-go/internal/db"
	"github.com/creatorlens/creatorlens-go/internal/handler"
	"github.com/creatorlens/creatorlens-go/internal/middleware"
	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/repository"
	"github.com/creatorlens/creatorlens-go/internal/router"
	"github.com/creatorlens/creatorlens-go/internal/service"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "creatorlens")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to apply database schema: %v", err)
	}

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	yt := youtube.NewClient(youtube.Options{
		DataBaseURL:   cfg.DataAPIBaseURL,
		AnalyticsBase: cfg.AnalyticsAPIBaseURL,
		ReportingBase: cfg.ReportingAPIBaseURL,
	})

	connRepo := repository.NewConnectionRepo(pool)
	jobRepo := repository.NewJobRepo(pool)
	summaryRepo := repository.NewSummaryRepo(pool)
	reportJobRepo := repository.NewReportJobRepo(pool)

	tokenSvc := service.NewTokenService(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURL, cfg.TokenURL, connRepo)
	snapshotSvc := service.NewSnapshotService(yt)
	analyticsSvc := service.NewAnalyticsService(yt)
	reportSvc := service.NewReportService(yt, reportJobRepo, cache, map[string]string{
		model.ReportChannelDaily: cfg.ReportTypeChannelDaily,
		model.ReportVideoDaily:   cfg.ReportTypeVideoDaily,
		model.ReportDemographics: cfg.ReportTypeDemographics,
		model.ReportGeo:          cfg.ReportTypeGeo,
	})
	aggregateSvc := service.NewAggregateService(tokenSvc, snapshotSvc, analyticsSvc, reportSvc)
	refreshSvc := service.NewRefreshService(jobRepo, connRepo, summaryRepo, aggregateSvc)
	poller := service.NewPoller(jobRepo, 2*time.Second, 30*time.Second)
	summarySvc := service.NewSummaryService(summaryRepo, connRepo, refreshSvc, cfg.SummaryStaleAfter, cfg.AutoRefreshCooldown)

	handler.InitMetrics(pool)
	refreshSvc.OnEnqueue = handler.CountRefreshEnqueue

	h := &router.Handlers{
		Connections: handler.NewConnectionsHandler(connRepo, summarySvc),
		Refresh:     handler.NewRefreshHandler(refreshSvc, poller),
		Summary:     handler.NewSummaryHandler(summarySvc),
		OAuth:       handler.NewOAuthHandler(tokenSvc, yt, connRepo, cfg.OAuthStateSecret),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}

	app := fiber.New(fiber.Config{
		AppName:      "CreatorLens API",
		ServerHeader: "CreatorLens",
	})
	router.Setup(app, h, cfg.CORSOrigins)

	sweep := service.NewSweepWorker(connRepo, summaryRepo, refreshSvc, cfg.SweepInterval, cfg.SummaryStaleAfter, cfg.AutoRefreshCooldown)
	go sweep.Start(ctx)
	defer sweep.Stop()

	log.Printf("CreatorLens backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	log.Fatal(app.Listen(":" + cfg.Port))
}
