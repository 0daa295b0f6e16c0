package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

// maxMessagePreview is how much of a comment the notification quotes
const maxMessagePreview = 40

// HandleCommentNotification tells a feed author that someone commented on their post
func HandleCommentNotification(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseCommentNotificationPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w: %w", err, asynq.SkipRetry)
	}

	var comment models.Comment
	err = db.WithContext(ctx).
		Preload("Feed").
		Preload("Author").
		Where("id = ?", payload.CommentID).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Deleted before the worker picked the task up
		logger.Warn().Int64("comment_id", payload.CommentID).Msg("Comment not found, skipping notification")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if comment.AuthorID == comment.Feed.AuthorID {
		logger.Debug().
			Int64("comment_id", comment.ID).
			Msg("Author commented on their own post, skipping notification")
		return nil
	}

	feedID := comment.FeedID
	notification := models.Notification{
		UserID:  comment.Feed.AuthorID,
		Kind:    models.NotificationComment,
		Message: fmt.Sprintf("%s commented on your post: %s", comment.Author.Nickname, quote(comment.Content)),
		FeedID:  &feedID,
	}
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logger.Info().
		Int64("comment_id", comment.ID).
		Int64("feed_id", feedID).
		Str("user_id", notification.UserID).
		Msg("Comment notification created")

	return nil
}

func quote(text string) string {
	runes := []rune(text)
	if len(runes) > maxMessagePreview {
		return fmt.Sprintf("%q", string(runes[:maxMessagePreview])+"…")
	}
	return fmt.Sprintf("%q", text)
}
