package workers

import (
	"context"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

func TestHandleCommentNotification(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "kim")
	commenter := createUser(t, db, "lee")

	feed := models.Feed{AuthorID: author.ID, Content: "Summer all the way"}
	require.NoError(t, db.Create(&feed).Error)
	comment := models.Comment{FeedID: feed.ID, AuthorID: commenter.ID, Content: "Winter, obviously"}
	require.NoError(t, db.Create(&comment).Error)

	task, err := tasks.NewCommentNotificationTask(comment.ID)
	require.NoError(t, err)
	require.NoError(t, HandleCommentNotification(context.Background(), task, db, zerolog.Nop()))

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)

	n := notifications[0]
	assert.Equal(t, author.ID, n.UserID)
	assert.Equal(t, models.NotificationComment, n.Kind)
	assert.Equal(t, `lee commented on your post: "Winter, obviously"`, n.Message)
	require.NotNil(t, n.FeedID)
	assert.Equal(t, feed.ID, *n.FeedID)
	assert.Nil(t, n.ReadAt)
}

func TestHandleCommentNotification_OwnPost(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "kim")

	feed := models.Feed{AuthorID: author.ID, Content: "Summer all the way"}
	require.NoError(t, db.Create(&feed).Error)
	comment := models.Comment{FeedID: feed.ID, AuthorID: author.ID, Content: "edit: and beaches"}
	require.NoError(t, db.Create(&comment).Error)

	task, err := tasks.NewCommentNotificationTask(comment.ID)
	require.NoError(t, err)
	require.NoError(t, HandleCommentNotification(context.Background(), task, db, zerolog.Nop()))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleCommentNotification_MissingComment(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewCommentNotificationTask(999)
	require.NoError(t, err)
	assert.NoError(t, HandleCommentNotification(context.Background(), task, db, zerolog.Nop()))
}

func TestHandleCommentNotification_BadPayload(t *testing.T) {
	db := newTestDB(t)

	task := asynq.NewTask(tasks.TypeCommentNotification, []byte("{"))
	err := HandleCommentNotification(context.Background(), task, db, zerolog.Nop())
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"short"`, quote("short"))

	long := strings.Repeat("a", maxMessagePreview+10)
	assert.Equal(t, `"`+strings.Repeat("a", maxMessagePreview)+`…"`, quote(long))
}
