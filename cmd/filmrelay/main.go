package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmrelay/filmrelay/internal/api"
	"github.com/filmrelay/filmrelay/internal/config"
	"github.com/filmrelay/filmrelay/internal/database"
	"github.com/filmrelay/filmrelay/internal/fetch"
	"github.com/filmrelay/filmrelay/internal/history"
	"github.com/filmrelay/filmrelay/internal/logger"
	"github.com/filmrelay/filmrelay/internal/notification/telegram"
	"github.com/filmrelay/filmrelay/internal/pipeline"
	"github.com/filmrelay/filmrelay/internal/scheduler"
	"github.com/filmrelay/filmrelay/internal/scrape"
	"github.com/filmrelay/filmrelay/internal/seenset"
)

const syncTaskID = "film-sync"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting FilmRelay")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	historyService := history.NewService(db.Conn(), log.Logger)

	profile, err := scrape.LoadProfile(cfg.Scraper.ProfilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load extraction profile")
	}
	if cfg.Scraper.DefaultLanguage != "" {
		profile.DefaultLanguage = cfg.Scraper.DefaultLanguage
	}
	fields, err := scrape.NewFieldSet(profile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compile extraction profile")
	}
	engine := scrape.NewEngine(fields, log.Logger)

	var fetcher fetch.Fetcher
	if cfg.Scraper.UseBrowser {
		browser := fetch.NewBrowser(cfg.Scraper.FetchTimeout, log.Logger)
		defer browser.Close()
		fetcher = browser
	} else {
		fetcher = fetch.NewClient(cfg.Scraper.FetchTimeout, log.Logger)
	}

	seen, err := seenset.NewStore(cfg.SeenSet.Path, cfg.SeenSet.MaxTrackedFilms, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load seen set")
	}

	notifier := telegram.New("telegram", telegram.Settings{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		TopicID:  cfg.Telegram.TopicID,
		Silent:   cfg.Telegram.Silent,
	}, &http.Client{Timeout: 30 * time.Second}, log.Logger)

	syncService := pipeline.NewService(pipeline.Options{
		ListingURL:   cfg.Scraper.ListingURL(),
		MaxFilms:     cfg.Scraper.MaxFilms,
		FetchDelay:   cfg.Scraper.FetchDelay,
		PublishDelay: cfg.Sync.PublishDelay,
	}, fetcher, engine, seen, notifier, historyService, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	err = sched.RegisterTask(scheduler.TaskConfig{
		ID:          syncTaskID,
		Name:        "Film Sync",
		Description: "Scrape the source listing and publish new films",
		Cron:        cfg.Sync.Cron,
		Func:        syncService.Run,
		RunOnStart:  cfg.Sync.RunOnStart,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register sync task")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	server := api.NewServer(syncService, historyService, seen, sched, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("stopped")
}
