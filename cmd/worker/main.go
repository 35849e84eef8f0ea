package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/granjaops/taskward/internal/config"
	"github.com/granjaops/taskward/internal/database"
	"github.com/granjaops/taskward/internal/logger"
	"github.com/granjaops/taskward/internal/notify"
	"github.com/granjaops/taskward/internal/queue"
	"github.com/granjaops/taskward/internal/workers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.String("push_gateway", cfg.PushGatewayURL),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis backs the in-app notification fallback channel
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	// Notification dispatcher: push gateway primary, Redis in-app fallback
	fallback := notify.NewRedisInAppNotifier(redisClient)
	dispatcher := notify.NewDispatcher(cfg.PushGatewayURL, cfg.PushTopic, cfg.SoundCueURL, fallback, zapLogger)

	permCtx, permCancel := context.WithTimeout(context.Background(), 10*time.Second)
	state := dispatcher.RequestPermission(permCtx)
	permCancel()
	zapLogger.Info("notification_permission", zap.String("state", string(state)))
	if state == notify.PermissionDenied {
		zapLogger.Warn("push_gateway_denied_notifications_will_be_skipped")
	}

	pendingRepo := database.NewPendingTaskRepository(db)
	alertWorker := workers.NewAlertDispatcher(pendingRepo, dispatcher, jobQueue, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_consuming", zap.String("queue", queue.DefaultQueueName))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			zapLogger.Info("worker_shutting_down")
			cancel()
			return
		case err, ok := <-errChan:
			if !ok {
				zapLogger.Info("consumer_error_channel_closed")
				return
			}
			zapLogger.Error("consumer_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Info("consumer_channel_closed")
				return
			}
			if err := alertWorker.ProcessJob(ctx, msg); err != nil {
				zapLogger.Warn("job_processing_failed", zap.Error(err))
			}
		}
	}
}
