package workers

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/tasks"
)

// NewServeMux registers every task handler
func NewServeMux(db *gorm.DB, logger zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(tasks.TypeCommentNotification, func(ctx context.Context, t *asynq.Task) error {
		return HandleCommentNotification(ctx, t, db, logger)
	})
	mux.HandleFunc(tasks.TypeGamePublish, func(ctx context.Context, t *asynq.Task) error {
		return HandleGamePublish(ctx, t, db, logger)
	})

	return mux
}
