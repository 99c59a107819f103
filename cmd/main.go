package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/wilayah-id/crawler/internal/clients/bansos"
	"github.com/wilayah-id/crawler/internal/config"
	"github.com/wilayah-id/crawler/internal/entities"
	"github.com/wilayah-id/crawler/internal/logger"
	"github.com/wilayah-id/crawler/internal/metrics"
	"github.com/wilayah-id/crawler/internal/notifier"
	"github.com/wilayah-id/crawler/internal/repositories"
	"github.com/wilayah-id/crawler/internal/services"
	"github.com/wilayah-id/crawler/internal/storage"
)

func runCrawl(ctx context.Context, builder *services.HierarchyBuilder, writer *storage.Writer,
	runs *repositories.Runs, tg *notifier.Telegram) error {

	startedAt := time.Now()

	doc, report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	path, err := writer.Save(doc)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeOutput).Errorf("failed to save document: %v", err)
		return err
	}
	log.Infof("document saved to %s", path)

	if report.TotalFailures() > 0 {
		log.Warnf("crawl completed with %d failed fetches, the document undercounts the remote state",
			report.TotalFailures())
		for _, warning := range report.Warnings {
			log.Warn(warning)
		}
	}

	stats := doc.Metadata.Statistics
	run := entities.CrawlRun{
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		Provinces:     stats.TotalProvinces,
		Cities:        stats.TotalCities,
		Districts:     stats.TotalDistricts,
		Villages:      stats.TotalVillages,
		FailedFetches: report.TotalFailures(),
		Canceled:      report.Canceled,
		OutputFile:    path,
	}
	if err := runs.Add(context.Background(), &run); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to record crawl run: %v", err)
	}

	if tg != nil {
		if err := tg.NotifyCrawlCompleted(run); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("failed to send notification: %v", err)
		}
	}

	return nil
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}
	runs := repositories.NewRunsRepository(dbContext.DB)

	client := bansos.NewClient(cfg.Crawler.BaseURL)
	client.SetHTTPClient(&http.Client{Timeout: cfg.Crawler.RequestTimeout})
	client.SetRateLimit(cfg.Crawler.MaxRequestsPerSecond)
	client.SetRetries(cfg.Crawler.MaxRetries)

	bus := EventBus.New()
	if _, err = services.NewProgressReporter(bus); err != nil {
		log.Fatalf("can't create progress reporter: %v", err)
	}

	builder := services.NewHierarchyBuilder(bus, client, cfg.Crawler.Source)
	builder.SetFailFast(cfg.Crawler.FailFast)
	builder.SetMaxConcurrent(cfg.Crawler.MaxConcurrentRequests)

	writer := storage.NewWriter(cfg.Output.Dir)

	var tg *notifier.Telegram
	if cfg.Notifier.TelegramToken != "" {
		if tg, err = notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatID); err != nil {
			log.Fatalf("can't create telegram notifier: %v", err)
		}
	}

	if cfg.Crawler.CronSchedule == "" {
		if err := runCrawl(ctx, builder, writer, runs, tg); err != nil {
			log.Fatalf("crawl failed: %v", err)
		}
		return
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Crawler.CronSchedule, func() {
		if err := runCrawl(ctx, builder, writer, runs, tg); err != nil {
			log.Errorf("scheduled crawl failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("can't schedule crawl: %v", err)
	}

	scheduler.Start()
	log.Infof("crawler scheduled with cron expression %q", cfg.Crawler.CronSchedule)
	<-ctx.Done()

	log.Info("Shutting down...")
	scheduler.Stop()
}
