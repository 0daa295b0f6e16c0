package workers

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

// DailyScheduler enqueues a game:publish task at every activation of a cron
// schedule, and once at startup so a restart after the activation still
// publishes the day's game.
type DailyScheduler struct {
	client   tasks.Enqueuer
	schedule cron.Schedule
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewDailyScheduler parses the 5-field cron expression and builds a scheduler
func NewDailyScheduler(client tasks.Enqueuer, cronExpr string, clock clockwork.Clock, logger zerolog.Logger) (*DailyScheduler, error) {
	// standard 5-field format: minute hour day-of-month month day-of-week
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, err
	}

	return &DailyScheduler{
		client:   client,
		schedule: schedule,
		clock:    clock,
		logger:   logger.With().Str("component", "daily_scheduler").Str("schedule", cronExpr).Logger(),
	}, nil
}

// Run blocks until ctx is cancelled
func (s *DailyScheduler) Run(ctx context.Context) {
	s.enqueue(s.clock.Now())

	for {
		now := s.clock.Now()
		next := s.schedule.Next(now)
		s.logger.Debug().Time("next_run", next).Msg("Waiting for next activation")

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(now)):
			s.enqueue(next)
		}
	}
}

// NextRun returns the first activation after from
func (s *DailyScheduler) NextRun(from time.Time) time.Time {
	return s.schedule.Next(from)
}

func (s *DailyScheduler) enqueue(at time.Time) {
	playDate := at.Format(models.PlayDateLayout)

	task, err := tasks.NewGamePublishTask(playDate)
	if err != nil {
		s.logger.Error().Err(err).Str("play_date", playDate).Msg("Failed to create publish task")
		return
	}

	_, err = s.client.Enqueue(task,
		asynq.TaskID("game:publish:"+playDate),
		asynq.MaxRetry(10),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Debug().Str("play_date", playDate).Msg("Publish task already enqueued")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("play_date", playDate).Msg("Failed to enqueue publish task")
		return
	}

	s.logger.Info().Str("play_date", playDate).Msg("Publish task enqueued")
}
