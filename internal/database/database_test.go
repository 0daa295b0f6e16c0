package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/models"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banban.sqlite")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []any{
		&models.Setting{}, &models.User{}, &models.BalanceGame{}, &models.Vote{},
		&models.Feed{}, &models.Comment{}, &models.Notification{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}

	var journalMode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banban.sqlite")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "kim@banban.test", PasswordHash: "x", Nickname: "kim"}).Error)
	require.NoError(t, Close(db))

	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer Close(db)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
