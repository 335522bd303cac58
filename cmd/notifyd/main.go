package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/notifykit/internal/api"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/sms"
	"github.com/dmitrymomot/notifykit/pkg/template"
	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

type appConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"notifyd"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// StorageDriver selects the tracked message store: memory or postgres.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	// NotificationDriver selects notification storage: memory, redis, or
	// postgres. Defaults to the tracked message driver.
	NotificationDriver string `env:"NOTIFICATION_DRIVER"`

	UsersFile     string `env:"USERS_FILE,required"`
	TemplatesFile string `env:"TEMPLATES_FILE"`

	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	SMSEnabled  bool   `env:"SMS_ENABLED" envDefault:"false"`
	SMSDevDir   string `env:"SMS_DEV_DIR" envDefault:"./tmp/sms"`

	RetryPassInterval time.Duration `env:"RETRY_PASS_INTERVAL" envDefault:"1m"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.AppName),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "notifyd exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	// Storage wiring. The tracked message store carries the delivery
	// lifecycle; notification storage carries the user-facing feed.
	var (
		trackStore   tracking.Store
		notifStorage notification.Storage
		probes       []func(context.Context) error
	)

	notifDriver := cfg.NotificationDriver
	if notifDriver == "" {
		notifDriver = cfg.StorageDriver
	}

	switch cfg.StorageDriver {
	case "postgres":
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}
		trackStore = tracking.NewPostgresStore(pool)
		if notifDriver == "postgres" {
			notifStorage = notification.NewPostgresStorage(pool)
		}
		probes = append(probes, pg.Healthcheck(pool))
	default:
		trackStore = tracking.NewMemoryStore()
	}

	switch notifDriver {
	case "redis":
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		notifStorage = notification.NewRedisStorage(client)
		probes = append(probes, redis.Healthcheck(client))
	case "postgres":
		// Wired above alongside the tracked message store.
	default:
		notifStorage = notification.NewMemoryStorage()
	}
	if notifStorage == nil {
		notifStorage = notification.NewMemoryStorage()
	}

	// Provider clients. Without credentials the dev senders write outbound
	// messages to local files instead of calling anyone.
	var emailCfg email.Config
	config.MustLoad(&emailCfg)

	var mailer email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		client, err := email.NewPostmarkClient(emailCfg)
		if err != nil {
			return err
		}
		mailer = client
	} else {
		log.InfoContext(ctx, "no postmark token configured, writing emails to disk",
			slog.String("dir", cfg.EmailDevDir),
		)
		mailer = email.NewDevSender(cfg.EmailDevDir)
	}
	mailer = withEmailTimeout(mailer, cfg.ProviderTimeout)

	var texter sms.SMSSender
	if cfg.SMSEnabled {
		var smsCfg sms.Config
		config.MustLoad(&smsCfg)
		if smsCfg.TwilioAccountSID != "" {
			client, err := sms.NewTwilioClient(smsCfg)
			if err != nil {
				return err
			}
			texter = client
		} else {
			log.InfoContext(ctx, "no twilio credentials configured, writing sms to disk",
				slog.String("dir", cfg.SMSDevDir),
			)
			texter = sms.NewDevSender(cfg.SMSDevDir, smsCfg.DefaultCountryCode)
		}
		texter = withSMSTimeout(texter, cfg.ProviderTimeout)
	}

	// Template resolution: stored templates when a file is configured,
	// built-in defaults otherwise.
	var templateStore template.Store
	if cfg.TemplatesFile != "" {
		fileStore, err := template.NewFileStore(cfg.TemplatesFile)
		if err != nil {
			return err
		}
		templateStore = fileStore
	}
	resolver := template.NewResolver(templateStore, template.WithResolverLogger(log))

	directory, err := notification.NewFileDirectory(cfg.UsersFile)
	if err != nil {
		return err
	}

	// Pipeline services.
	emails := tracking.NewSender(trackStore, mailer, emailCfg.SenderEmail,
		tracking.WithSenderLogger(log),
	)
	ingestor := tracking.NewIngestor(trackStore,
		tracking.WithIngestorLogger(log),
	)
	retrier := tracking.NewRetrier(trackStore, mailer,
		tracking.WithRetrierLogger(log),
	)
	analytics := tracking.NewAnalytics(trackStore)

	routerOpts := []notification.RouterOption{notification.WithRouterLogger(log)}
	if texter != nil {
		routerOpts = append(routerOpts, notification.WithSMSSender(texter))
	}
	router := notification.NewRouter(notifStorage, directory, resolver, emails, routerOpts...)

	// Background loops: periodic retry passes and feed retention cleanup.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runRetryLoop(ctx, retrier, cfg.RetryPassInterval, log)
	}()
	go func() {
		defer wg.Done()
		runCleanupLoop(ctx, router, cfg.CleanupInterval, log)
	}()

	// HTTP surface.
	handler := api.New(ingestor, router, analytics, api.WithLogger(log))
	mux := handler.Routes()
	mux.Get("/health", httpserver.HealthCheckHandler(ctx, log))
	mux.Get("/ready", httpserver.HealthCheckHandler(ctx, log, probes...))

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	err = srv.Run(ctx, mux)
	wg.Wait()
	return err
}

func runRetryLoop(ctx context.Context, retrier *tracking.Retrier, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := retrier.RunRetryPass(ctx)
			if err != nil {
				log.ErrorContext(ctx, "retry pass failed", logger.Error(err))
				continue
			}
			if processed > 0 {
				log.InfoContext(ctx, "retry pass completed", slog.Int("processed", processed))
			}
		}
	}
}

func runCleanupLoop(ctx context.Context, router *notification.Router, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := router.CleanupExpired(ctx); err != nil {
				log.ErrorContext(ctx, "notification cleanup failed", logger.Error(err))
			}
		}
	}
}
