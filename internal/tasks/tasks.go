package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Notify a feed author about a new comment
	TypeCommentNotification = "notification:comment"
	// Publish the balance game of a play date and announce it
	TypeGamePublish = "game:publish"
)

// Enqueuer is the part of *asynq.Client used to schedule tasks
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CommentNotificationPayload identifies the comment to notify about
type CommentNotificationPayload struct {
	CommentID int64 `json:"comment_id"`
}

// GamePublishPayload identifies the play date to publish
type GamePublishPayload struct {
	PlayDate string `json:"play_date"` // YYYY-MM-DD
}

// NewCommentNotificationTask creates a task to notify the author of the commented feed
func NewCommentNotificationTask(commentID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(CommentNotificationPayload{
		CommentID: commentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeCommentNotification, payload), nil
}

// NewGamePublishTask creates a task to publish the game of playDate
func NewGamePublishTask(playDate string) (*asynq.Task, error) {
	payload, err := json.Marshal(GamePublishPayload{
		PlayDate: playDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeGamePublish, payload), nil
}

// ParseCommentNotificationPayload parses the payload of a comment notification task
func ParseCommentNotificationPayload(task *asynq.Task) (CommentNotificationPayload, error) {
	var payload CommentNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseGamePublishPayload parses the payload of a game publish task
func ParseGamePublishPayload(task *asynq.Task) (GamePublishPayload, error) {
	var payload GamePublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
