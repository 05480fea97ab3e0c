package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-digest/app/api"
	"github.com/lysyi3m/news-digest/app/cfg"
	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/feed"
	"github.com/lysyi3m/news-digest/app/llm"
	"github.com/lysyi3m/news-digest/app/mailer"
	"github.com/lysyi3m/news-digest/app/subscription"
	"github.com/lysyi3m/news-digest/app/tasks"
)

const taskTimeout = 30 * time.Minute

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		stop()
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, appCfg *cfg.Cfg) error {
	slog.Info("Starting News Digest", "command", appCfg.Command, "version", appCfg.Version, "timezone", time.Local.String())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepository(db)
	subscriberRepo := database.NewSubscriberRepository(db)
	digestLogRepo := database.NewDigestLogRepository(db)

	httpClient := &http.Client{Timeout: 60 * time.Second}
	runner := tasks.NewRunner(taskTimeout)

	switch appCfg.Command {
	case cfg.CommandMigrate:
		slog.Info("Database is up to date", "version", version)
		return nil

	case cfg.CommandAggregate:
		catalogue, err := feed.LoadCatalogue(appCfg.FeedsDir)
		if err != nil {
			return fmt.Errorf("failed to load feed catalogue: %w", err)
		}
		slog.Info("Feed catalogue loaded", "count", catalogue.Len(), "dir", appCfg.FeedsDir)

		client := feed.NewClient(httpClient, feed.NewParser(), feed.NewContentExtractor(), appCfg.UserAgent)
		gemini, err := llm.NewGeminiClient(ctx, httpClient, appCfg.GeminiBaseURL, appCfg.GeminiAPIKey, appCfg.GeminiModel)
		if err != nil {
			return err
		}
		summarizer := feed.NewSummarizer(gemini, appCfg.SummaryLimit, appCfg.SummaryRPM, time.Duration(appCfg.SummaryTimeout)*time.Second)

		task := tasks.NewAggregateTask(catalogue, client, feed.NewDeduplicator(articleRepo), summarizer, articleRepo)
		return runner.Run(ctx, task)

	case cfg.CommandSendDigest:
		renderer, err := digest.NewRenderer()
		if err != nil {
			return err
		}

		resend, err := mailer.NewResendClient(httpClient, appCfg.ResendBaseURL, appCfg.ResendAPIKey)
		if err != nil {
			return err
		}
		from := fmt.Sprintf("Daily AI News <%s>", appCfg.FromEmail)
		batcher := digest.NewBatcher(resend, appCfg.BatchSize, from, appCfg.BaseUrl)

		task := tasks.NewSendDigestTask(articleRepo, subscriberRepo, digestLogRepo, renderer, batcher, appCfg.DigestLimit)
		return runner.Run(ctx, task)

	case cfg.CommandServe:
		handler := api.NewHandler(subscription.NewService(subscriberRepo), articleRepo, subscriberRepo, digestLogRepo, appCfg.Version)
		return serve(ctx, api.NewServer(handler, appCfg.APIAccessKey), appCfg.Port)
	}

	return fmt.Errorf("unknown command '%s'", appCfg.Command)
}

func serve(ctx context.Context, handler http.Handler, port string) error {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "port", port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
