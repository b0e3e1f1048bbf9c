package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"roster-bot/assistant"
	"roster-bot/binding"
	"roster-bot/bot"
	"roster-bot/config"
	applogger "roster-bot/logger"
	"roster-bot/reminder"
	"roster-bot/roster"
	"roster-bot/sheet"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ROSTER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	loc, _ := cfg.Reminder.Location()
	ctx := context.Background()

	store, err := openStore(cfg.Store)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	if err := store.Ensure(ctx, cfg.Store.UsersSheet, binding.Header); err != nil {
		logger.Fatal("prepare users sheet failed", zap.Error(err))
	}

	now := func() time.Time { return time.Now().In(loc) }
	schedules := roster.NewWorkbook(rosterLoader(cfg.Roster), roster.ParseOptions{
		Sheet:     cfg.Roster.Sheet,
		HeaderRow: cfg.Roster.HeaderRow,
		StartRow:  cfg.Roster.StartRow,
		NameCol:   cfg.Roster.NameCol,
	}, now, logger)

	users := binding.NewDirectory(store, cfg.Store.UsersSheet)
	binder := binding.NewHandler(schedules, store, cfg.Store.UsersSheet, applogger.NewRecorder(logger.Named("bind")))
	router := assistant.NewRouter(binder, users, schedules, loc, now, logger)

	b, err := bot.NewBot(bot.NewSettings(cfg.Bot.Token, cfg.Bot.PollTimeout), router, logger)
	if err != nil {
		logger.Fatal("create bot failed", zap.Error(err))
	}

	// Scheduler
	c := cron.New(cron.WithLocation(loc))
	if cfg.Reminder.Enabled {
		r := reminder.New(users, schedules, router, b, logger)
		if _, err := r.Schedule(c, cfg.Reminder.Spec); err != nil {
			logger.Fatal("schedule reminder failed", zap.Error(err))
		}
	}
	c.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down", zap.String("signal", sig.String()))
		<-c.Stop().Done()
		b.Stop()
	}()

	logger.Info("bot started",
		zap.String("store", cfg.Store.Backend),
		zap.Bool("reminder", cfg.Reminder.Enabled),
		zap.String("reminder_spec", cfg.Reminder.Spec),
	)
	b.Start()
}

func openStore(cfg config.StoreConfig) (sheet.Store, error) {
	if cfg.Backend == config.BackendXLSX {
		return sheet.NewWorkbookStore(cfg.XLSXPath), nil
	}

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	return sheet.NewDBStore(db)
}

func rosterLoader(cfg config.RosterConfig) roster.Loader {
	if cfg.URL != "" {
		return roster.NewHTTPLoader(cfg.URL, cfg.Timeout)
	}
	return roster.FileLoader{Path: cfg.Path}
}
