package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Kaensy/mathed-romania/internal/handler"
	internalmiddleware "github.com/Kaensy/mathed-romania/internal/middleware"
	"github.com/Kaensy/mathed-romania/internal/repository"
	"github.com/Kaensy/mathed-romania/internal/service"
	"github.com/Kaensy/mathed-romania/pkg/cache"
	"github.com/Kaensy/mathed-romania/pkg/config"
	"github.com/Kaensy/mathed-romania/pkg/database"
	"github.com/Kaensy/mathed-romania/pkg/logger"
	"github.com/Kaensy/mathed-romania/pkg/mailer"
	"github.com/Kaensy/mathed-romania/pkg/mathpreview"
	corsmiddleware "github.com/Kaensy/mathed-romania/pkg/middleware/cors"
	reqidmiddleware "github.com/Kaensy/mathed-romania/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Single-use link tracking degrades gracefully without Redis.
		logr.Sugar().Warnw("redis unavailable, link tokens limited to signature checks", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	var mail mailer.Mailer
	if cfg.Mail.APIKey != "" {
		mail, err = mailer.NewHTTPMailer(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.BaseURL)
		if err != nil {
			logr.Sugar().Fatalw("failed to init mailer", "error", err)
		}
	} else {
		mail = mailer.NewLogMailer(logr)
	}

	mailSvc := service.NewMailService(mail, cfg.Mail, logr)
	mailSvc.Start(context.Background())
	defer mailSvc.Stop()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewLinkTokenRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, linkRepo, mailSvc, validator.New(), logr, metricsSvc, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		FrontendURL:        cfg.FrontendURL,
		LinkSecret:         cfg.Consent.LinkSecret,
		ConsentLinkTTL:     cfg.Consent.LinkTTL,
		ResetLinkTTL:       cfg.Consent.ResetTTL,
		MinimumConsentAge:  cfg.Consent.MinimumAge,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	handler.RegisterRoutes(r, cfg, authSvc, handler.NewPreviewHandler(mathpreview.New(nil)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
