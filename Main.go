package main

import (
	"Storefront/cache"
	"Storefront/config"
	"Storefront/google"
	"Storefront/handlers"
	"Storefront/jwt"
	"Storefront/mail"
	"Storefront/metrics"
	"Storefront/routers"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)
	gin.SetMode(gin.ReleaseMode)

	db, err := config.SetupDatabase(cfg.Database)
	if err != nil {
		logger.Error("connect database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection(cfg.Redis)
	if err != nil {
		logger.Error("connect redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	if rdb == nil {
		logger.Info("redis not configured, product cache disabled")
	} else {
		defer rdb.Close()
	}

	var mailer mail.Sender = mail.LogSender{Logger: logger}
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		logger.Warn("smtp not configured, one-time codes will not be delivered")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &handlers.App{
		DB:       db,
		Tokens:   jwt.NewService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, jwt.WithTTL(cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)),
		Products: cache.NewProductCache(rdb),
		Google:   google.NewIDTokenVerifier(cfg.Google.ClientID),
		Mailer:   mailer,
		Metrics:  metrics.New(reg),
		Logger:   logger,
	}

	router := routers.SetupRouters(app, routers.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Gatherer:      reg,
	})

	logger.Info("server listening", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
