package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/config"
	"github.com/yeremiapane/site-engineer-app/database"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/hub"
	"github.com/yeremiapane/site-engineer-app/i18n"
	"github.com/yeremiapane/site-engineer-app/middlewares"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/router"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/utils"
)

func main() {
	config.LoadEnvFile()
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize DB
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	store := repositories.NewGormStore(db)

	hasher := services.NewBcryptHasher()
	if err := database.SeedAdmin(ctx, store, hasher, cfg.SeedUser.Email, cfg.SeedUser.Password); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up sessions: %v", err)
	}

	// Notifications: composer -> bounded queue -> SMTP (or log)
	if err := i18n.Init(cfg.Notify.Locale); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load translations: %v", err)
	}
	composer, err := services.NewMailComposer(store, cfg.Notify.Recipients, cfg.Notify.Locale)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load mail templates: %v", err)
	}
	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTP.Enabled() {
		mailer = services.NewSMTPMailer(services.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			TLS:      cfg.SMTP.TLS,
		})
	} else {
		utils.InfoLogger.Warn("SMTP_HOST not set, notifications are only logged")
	}
	notifier := services.NewNotifier(composer, mailer, cfg.Notify.Workers, cfg.Notify.QueueSize)
	// Workers outlive the signal so Stop can drain the queue.
	notifier.Start(context.WithoutCancel(ctx))

	live := hub.New()
	bus := events.NewBus(notifier, live)

	auth, err := services.NewAuthService(store, sessions, hasher, utils.NewTokenSigner(cfg.Session.Secret, cfg.Session.TTL))
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up auth: %v", err)
	}
	scope := services.NewScopeService(store)

	loginLimiter := middlewares.NewRateLimiter(cfg.HTTP.LoginRateLimit)
	loginLimiter.StartCleanup(ctx, 5*time.Minute)

	r, err := router.SetupRouter(router.Deps{
		Auth:         auth,
		Scope:        scope,
		Directory:    services.NewDirectoryService(store, hasher, scope),
		Reports:      services.NewReportService(store, scope, bus),
		CheckIns:     services.NewCheckInService(store, scope, bus),
		Leaves:       services.NewLeaveService(store, scope, bus),
		Dashboard:    services.NewDashboardService(store),
		Hub:          live,
		Store:        store,
		LoginLimiter: loginLimiter,
		GlobalLimit:  cfg.HTTP.RateLimit,
		CORSOrigin:   cfg.HTTP.CORSOrigin,
		SecureCookie: cfg.IsRelease(),
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
	live.Close()
	notifier.Stop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (services.SessionStore, error) {
	if cfg.Session.Store == "redis" {
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		utils.InfoLogger.Info("Sessions stored in redis")
		return services.NewRedisSessionStore(rdb), nil
	}

	mem := services.NewMemorySessionStore()
	mem.StartCleanup(ctx, 10*time.Minute)
	return mem, nil
}
