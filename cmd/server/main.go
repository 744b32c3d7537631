package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/todopop/backend/internal/config"
	"github.com/todopop/backend/internal/job"
	"github.com/todopop/backend/internal/monitor"
	"github.com/todopop/backend/internal/notify"
	"github.com/todopop/backend/internal/service"
	"github.com/todopop/backend/internal/store"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Open storage
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	tasks, err := store.NewSQLiteTaskStore(logger, db)
	if err != nil {
		logger.Fatal("Failed to create task store", zap.Error(err))
	}
	schedules, err := store.NewSQLiteScheduleStore(logger, db)
	if err != nil {
		logger.Fatal("Failed to create schedule store", zap.Error(err))
	}
	users, err := store.NewSQLiteUserStore(logger, db)
	if err != nil {
		logger.Fatal("Failed to create user store", zap.Error(err))
	}

	// Connect to NATS with more options
	opts := []nats.Option{
		nats.Name(cfg.App.Name),
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.Timeout(cfg.NATS.ConnectTimeout),
		nats.PingInterval(20 * time.Second),
		nats.MaxPingsOutstanding(5),
		nats.DrainTimeout(30 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected",
				zap.String("url", nc.ConnectedUrl()))
		}),
	}

	// Connect with retry
	var nc *nats.Conn
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		nc, err = nats.Connect(cfg.NATS.URL, opts...)
		if err == nil {
			break
		}
		logger.Warn("Failed to connect to NATS, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		logger.Fatal("Failed to connect to NATS after retries", zap.Error(err))
	}
	defer nc.Close()

	logger.Info("Connected to NATS successfully",
		zap.String("url", nc.ConnectedUrl()))

	js, err := nc.JetStream()
	if err != nil {
		logger.Fatal("Failed to create JetStream context", zap.Error(err))
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Notification dispatcher and task service
	dispatcher, err := notify.NewNATSDispatcher(js, logger)
	if err != nil {
		logger.Fatal("Failed to create notification dispatcher", zap.Error(err))
	}

	taskService := service.NewTaskService(logger, tasks)
	commands := service.NewCommandConsumer(js, logger, taskService)
	if err := commands.Start(ctx); err != nil {
		logger.Fatal("Failed to start command consumer", zap.Error(err))
	}

	// Stats reporter
	reporter := monitor.NewStatsReporter(js, cfg.Monitor.Interval, logger)
	if err := reporter.Start(ctx); err != nil {
		logger.Fatal("Failed to start stats reporter", zap.Error(err))
	}
	defer reporter.Stop()

	// Background jobs
	sweeper := job.NewOverdueSweeper(logger, tasks, cfg.Jobs.SweepPageSize)
	notifier := job.NewUpcomingNotifier(logger, schedules, users, dispatcher)

	jobs := job.NewScheduler(logger)
	err = jobs.AddDaily("overdue-sweep", cfg.Jobs.SweepAt, func(ctx context.Context) {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		started := time.Now()
		failed, err := sweeper.Run(runCtx, time.Now())
		reporter.RecordRun("overdue-sweep", failed, time.Since(started), err)
		if err != nil {
			logger.Error("Overdue sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to register overdue sweep", zap.Error(err))
	}

	err = jobs.AddEveryMinute("upcoming-notify", func(ctx context.Context) {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		started := time.Now()
		sent, err := notifier.Run(runCtx, time.Now())
		reporter.RecordRun("upcoming-notify", sent, time.Since(started), err)
		if err != nil {
			logger.Error("Upcoming-schedule notify failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to register upcoming notifier", zap.Error(err))
	}

	jobs.Start(ctx)
	logger.Info("Server started",
		zap.String("sweep_at", cfg.Jobs.SweepAt),
		zap.String("storage", cfg.Storage.Path))

	// Wait for shutdown signal
	<-ctx.Done()

	jobs.Stop()
	logger.Info("Server shutting down gracefully")
}
