package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"imagevault/internal/auth"
	"imagevault/internal/cache"
	"imagevault/internal/config"
	"imagevault/internal/handler"
	"imagevault/internal/imageproc"
	"imagevault/internal/logging"
	"imagevault/internal/metrics"
	appmw "imagevault/internal/middleware"
	"imagevault/internal/router"
	"imagevault/internal/service"
	"imagevault/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title Image Vault API
// @version 1.0
// @description Authenticated image storage: register, login, upload, list and delete images.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	st, err := store.Open(connectCtx, cfg)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("store init")
	}
	logger.WithField("driver", cfg.StoreDriver).Info("connected to record store")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var limiter *appmw.RateLimit
	var cacheClient *cache.Client
	if cfg.RateLimitEnabled() {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := cacheClient.Ping(ctx); err != nil {
			// requests still pass while redis is down
			logger.WithError(err).Warn("redis unreachable, auth rate limiting will fail open")
		}
		limiter = appmw.NewRateLimit(appmw.RateLimitConfig{
			Limit:  cfg.AuthRateLimit,
			Window: cfg.AuthRateWindow,
		}, cacheClient, logger, m)
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(st.Users, jwtService, cfg.AccessTokenTTL, logger, m)
	imageService := service.NewImageService(st.Images, imageproc.NewProcessor(), logger, m)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Deps{
		Logger:       logger,
		Metrics:      m,
		AuthService:  authService,
		AuthHandler:  handler.NewAuthHandler(authService, logger),
		ImageHandler: handler.NewImageHandler(imageService, logger),
		RateLimit:    limiter,
		Health:       st,
	})

	go func() {
		addr := ":" + cfg.ServerPort
		logger.WithField("addr", addr).Info("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http shutdown")
	}
	if err := cacheClient.Close(); err != nil {
		logger.WithError(err).Warn("redis close")
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("store close")
	}
}
