package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentNotificationTask(t *testing.T) {
	task, err := NewCommentNotificationTask(42)
	require.NoError(t, err)
	assert.Equal(t, TypeCommentNotification, task.Type())

	payload, err := ParseCommentNotificationPayload(task)
	require.NoError(t, err)
	assert.Equal(t, int64(42), payload.CommentID)
}

func TestGamePublishTask(t *testing.T) {
	task, err := NewGamePublishTask("2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, TypeGamePublish, task.Type())
	assert.JSONEq(t, `{"play_date":"2026-10-14"}`, string(task.Payload()))
}

func TestParsePayload_Invalid(t *testing.T) {
	task := asynq.NewTask(TypeGamePublish, []byte("not json"))

	_, err := ParseGamePublishPayload(task)
	assert.Error(t, err)

	_, err = ParseCommentNotificationPayload(task)
	assert.Error(t, err)
}
