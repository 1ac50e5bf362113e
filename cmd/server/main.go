package main // Entry point package

import (
	"context"
	"log"      // Fatal startup errors
	"log/slog" // Structured runtime logging
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/crewhq/meetup-backend/internal/config"
	"github.com/crewhq/meetup-backend/internal/database"
	"github.com/crewhq/meetup-backend/internal/handler"
	"github.com/crewhq/meetup-backend/internal/logging"
	"github.com/crewhq/meetup-backend/internal/middleware"
	"github.com/crewhq/meetup-backend/internal/queue"
	"github.com/crewhq/meetup-backend/internal/repository"
	"github.com/crewhq/meetup-backend/internal/router"
	"github.com/crewhq/meetup-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()

	// Open the configured database and apply the schema.
	dsn := cfg.DBPath
	if cfg.DBDriver == "mysql" {
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Repositories.
	members := repository.NewMemberRepo(db)
	rooms := repository.NewRoomRepo(db)
	meetups := repository.NewMeetupRepo(db)
	evaluations := repository.NewEvaluationRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Services. Broker publishing is enabled outside dev so local runs do
	// not need RabbitMQ.
	publishEvents := cfg.Env != "dev"
	roomSvc := service.NewRoomService(db, rooms, meetups)
	meetupSvc := service.NewMeetupService(db, meetups, rooms, notifications, publishEvents)
	evalSvc := service.NewEvaluationService(db, meetups, rooms, evaluations, members)
	notifSvc := service.NewNotificationService(notifications)

	// Background workers: expired-notification cleanup and the broker
	// consumer that mirrors completions into logs/meetup.log.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifSvc.StartCleanup(ctx, time.Hour)
	if publishEvents {
		go func() {
			if err := queue.StartMeetupConsumer(); err != nil {
				slog.Error("meetup consumer stopped", "error", err)
			}
		}()
	}

	// Redis-backed middleware degrades to pass-through when Redis is down;
	// NewRedisClient returns nil in that case.
	rdb := config.NewRedisClient()
	if rdb == nil {
		slog.Warn("redis unavailable, rate limiting and caching disabled")
	}
	mw := router.Middlewares{}
	if rdb != nil {
		mw.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		mw.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, members),
		Meetups:       handler.NewMeetupHandler(meetupSvc),
		Rooms:         handler.NewRoomHandler(roomSvc),
		Evaluations:   handler.NewEvaluationHandler(evalSvc),
		Notifications: handler.NewNotificationHandler(notifSvc),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Metrics())
	router.RegisterRoutes(e, h, mw)
	router.RegisterAuth(e, h, mw, cfg.JWTSecret)

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr, "env", cfg.Env, "driver", cfg.DBDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
