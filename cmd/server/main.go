package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/seat-booking/internal/config"
	"github.com/iliyamo/seat-booking/internal/database"
	"github.com/iliyamo/seat-booking/internal/handler"
	"github.com/iliyamo/seat-booking/internal/logger"
	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/queue"
	"github.com/iliyamo/seat-booking/internal/repository"
	"github.com/iliyamo/seat-booking/internal/router"
	"github.com/iliyamo/seat-booking/internal/sentiment"
	"github.com/iliyamo/seat-booking/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxOpen)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if err := database.Bootstrap(ctx, db, cfg.SeedSeats, cfg.SeatsPerRow); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, log.Named("publisher"))
		defer pub.Close()
		events = pub
	} else {
		log.Info("RABBITMQ_URL not set; domain events disabled")
	}

	rlCfg := config.LoadRateLimitConfig()
	var limiter echo.MiddlewareFunc
	if rlCfg.Enabled {
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			log.Warn("rate limiting disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			limiter = middleware.NewTokenBucket(rlCfg, rdb, log.Named("ratelimit"))
		}
	}

	seatRepo := repository.NewSeatRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	booker := service.NewBooker(seatRepo, events, log.Named("booking"))
	recorder := service.NewReviewRecorder(seatRepo, reviewRepo, sentiment.NewVader(), events, log.Named("review"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.IsDev()
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterQuery(e, handler.NewQueryHandler(seatRepo, reviewRepo, log))
	router.RegisterBooking(e,
		handler.NewBookingHandler(booker, log),
		handler.NewReviewHandler(recorder, log),
		cfg.JWTSecret, limiter)
	if cfg.JWTSecret != "" {
		router.RegisterAdmin(e, handler.NewAdminHandler(seatRepo, cfg.JWTSecret, cfg.AdminPasswordHash, cfg.AccessTTLMin, log), cfg.JWTSecret)
	} else {
		log.Info("JWT_SECRET not set; admin routes disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.RabbitURL != "" {
		g.Go(func() error {
			return queue.StartConsumer(gctx, cfg.RabbitURL, cfg.EventLogDir, log.Named("consumer"))
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
