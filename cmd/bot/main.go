package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/attendance_bot/internal/app"
	"github.com/Freeeeeet/attendance_bot/internal/attendance"
	"github.com/Freeeeeet/attendance_bot/internal/config"
	"github.com/Freeeeeet/attendance_bot/internal/controller"
	"github.com/Freeeeeet/attendance_bot/internal/coursecode"
	"github.com/Freeeeeet/attendance_bot/internal/repository"
	"github.com/Freeeeeet/attendance_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Sugar().Infow("Starting attendance bot",
		"environment", cfg.Environment,
		"token_length", len(cfg.TelegramToken))

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	attendeeRepo := repository.NewAttendeeRepository(pool)
	tokenRepo := repository.NewTokenRepository(redisClient, attendance.TokenLifetime)

	// Services
	userService := service.NewUserService(userRepo, logger)
	courseService := service.NewCourseService(courseRepo, attendeeRepo, userRepo, coursecode.NewGenerator(nil), time.Now, logger)
	attendanceService := service.NewAttendanceService(courseRepo, attendeeRepo, tokenRepo, time.Now, logger)

	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(botInstance, userService, courseService, attendanceService, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	scheduler := app.NewScheduler(courseService, botController, cfg.AnnounceInterval, time.Now, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Attendance bot stopped")
}
