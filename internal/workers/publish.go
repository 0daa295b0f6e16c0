package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

// fanOutBatchSize bounds the rows inserted per statement when announcing a game
const fanOutBatchSize = 500

// HandleGamePublish publishes the game scheduled for a play date and sends
// every user a daily_game notification. Publishing an already published game
// is a no-op, so the task can be retried or enqueued twice safely.
func HandleGamePublish(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseGamePublishPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w: %w", err, asynq.SkipRetry)
	}

	logger = logger.With().Str("play_date", payload.PlayDate).Logger()

	var game models.BalanceGame
	err = db.WithContext(ctx).Where("play_date = ?", payload.PlayDate).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn().Msg("No balance game scheduled for this date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	if game.Published() {
		logger.Debug().Int64("game_id", game.ID).Msg("Game already published")
		return nil
	}

	var announced int
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.BalanceGame{}).
			Where("id = ? AND published_at IS NULL", game.ID).
			Update("published_at", now)
		if res.Error != nil {
			return fmt.Errorf("failed to publish game: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// another worker won the race
			return nil
		}

		var userIDs []string
		if err := tx.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		notifications := make([]models.Notification, 0, len(userIDs))
		for _, id := range userIDs {
			notifications = append(notifications, models.Notification{
				UserID:  id,
				Kind:    models.NotificationDailyGame,
				Message: fmt.Sprintf("Today's balance game is up: %s (%s vs %s)", game.Title, game.OptionA, game.OptionB),
			})
		}
		if err := tx.CreateInBatches(&notifications, fanOutBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create notifications: %w", err)
		}
		announced = len(notifications)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int64("game_id", game.ID).
		Int("notified_users", announced).
		Msg("Balance game published")

	return nil
}
