package workers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

func TestHandleGamePublish(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "kim")
	createUser(t, db, "lee")
	createUser(t, db, "park")

	game := models.BalanceGame{Title: "Summer or winter?", OptionA: "Summer", OptionB: "Winter", PlayDate: "2026-10-14"}
	require.NoError(t, db.Create(&game).Error)
	other := models.BalanceGame{Title: "Cats or dogs?", OptionA: "Cats", OptionB: "Dogs", PlayDate: "2026-10-15"}
	require.NoError(t, db.Create(&other).Error)

	task, err := tasks.NewGamePublishTask("2026-10-14")
	require.NoError(t, err)
	require.NoError(t, HandleGamePublish(context.Background(), task, db, zerolog.Nop()))

	require.NoError(t, models.FindByID(db, game.ID, &game))
	assert.True(t, game.Published())
	require.NoError(t, models.FindByID(db, other.ID, &other))
	assert.False(t, other.Published())

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.Equal(t, models.NotificationDailyGame, n.Kind)
		assert.Contains(t, n.Message, "Summer or winter?")
		assert.Nil(t, n.FeedID)
	}

	// running again neither republishes nor notifies twice
	require.NoError(t, HandleGamePublish(context.Background(), task, db, zerolog.Nop()))
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestHandleGamePublish_NoGame(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "kim")

	task, err := tasks.NewGamePublishTask("2026-10-14")
	require.NoError(t, err)
	require.NoError(t, HandleGamePublish(context.Background(), task, db, zerolog.Nop()))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewServeMux(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "kim")
	game := models.BalanceGame{Title: "Summer or winter?", OptionA: "Summer", OptionB: "Winter", PlayDate: "2026-10-14"}
	require.NoError(t, db.Create(&game).Error)

	mux := NewServeMux(db, zerolog.Nop())

	task, err := tasks.NewGamePublishTask("2026-10-14")
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	require.NoError(t, models.FindByID(db, game.ID, &game))
	assert.True(t, game.Published())
}
