package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/banban-dev/banban/internal/config"
	"github.com/banban-dev/banban/internal/database"
	"github.com/banban-dev/banban/internal/logger"
	"github.com/banban-dev/banban/internal/workers"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	log.Info().Str("version", version).Msg("Starting ban:ban worker")

	db, err := database.Open(cfg.Database.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	redis := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	// used by the scheduler to queue publish tasks
	asynqClient := asynq.NewClient(redis)
	defer asynqClient.Close()

	asynqServer := asynq.NewServer(redis, asynq.Config{
		Concurrency: 10,
		Logger:      &asynqLogger{log: log},
	})

	scheduler, err := workers.NewDailyScheduler(asynqClient, cfg.Game.DailySchedule, clockwork.NewRealClock(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create daily scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)

	go func() {
		log.Info().Msg("Starting Asynq worker server...")
		if err := asynqServer.Run(workers.NewServeMux(db, log)); err != nil {
			log.Fatal().Err(err).Msg("Asynq worker server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, waiting for running tasks...")

	asynqServer.Shutdown()

	log.Info().Msg("Worker shutdown complete")
}

// asynqLogger adapts zerolog to asynq's logger interface
type asynqLogger struct {
	log zerolog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.log.Warn().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.log.Fatal().Msg(fmt.Sprint(args...))
}
