package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for user-facing models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// SeqModel is the base of every model listed with a cursor. The numeric id is
// the cursor, so it must grow with insertion order.
type SeqModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Setting holds server-wide settings
// This is a singleton model (only one row should exist)
type Setting struct {
	BaseModel
	JWTSecret string `gorm:"type:varchar(64);not null"` // Auto-generated on first boot (64 hex chars)
}

// User represents a ban:ban account
type User struct {
	BaseModel
	Email        string    `gorm:"unique;not null"`
	PasswordHash string    `gorm:"not null"`
	Nickname     string    `gorm:"not null"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	// Bumped by logout; tokens carrying an older version are rejected
	TokenVersion int `gorm:"not null;default:0"`
}

// PlayDateLayout is the format of BalanceGame.PlayDate
const PlayDateLayout = "2006-01-02"

// BalanceGame is a two-option question played on one date
type BalanceGame struct {
	SeqModel
	Title       string     `gorm:"not null"`
	OptionA     string     `gorm:"not null"`
	OptionB     string     `gorm:"not null"`
	PlayDate    string     `gorm:"type:varchar(10);unique;not null"` // YYYY-MM-DD
	PublishedAt *time.Time // Set once the daily job has published the game
}

// Published reports whether users can see and vote on the game
func (g *BalanceGame) Published() bool {
	return g.PublishedAt != nil
}

// Vote is one user's answer to a game
type Vote struct {
	SeqModel
	GameID int64  `gorm:"not null;uniqueIndex:idx_vote_user_game"`
	UserID string `gorm:"type:varchar(26);not null;uniqueIndex:idx_vote_user_game"`
	Option string `gorm:"type:varchar(1);not null"` // "A" or "B"
}

// Feed is a post on the shared feed
type Feed struct {
	SeqModel
	AuthorID string `gorm:"type:varchar(26);not null;index"`
	Content  string `gorm:"type:text;not null"`
	GameID   *int64

	// Relationships
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// Comment is a reply to a feed post
type Comment struct {
	SeqModel
	FeedID   int64  `gorm:"not null;index"`
	AuthorID string `gorm:"type:varchar(26);not null"`
	Content  string `gorm:"type:text;not null"`

	// Relationships
	Feed   Feed `gorm:"foreignKey:FeedID;constraint:OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// Notification kinds
const (
	NotificationComment   = "comment"
	NotificationDailyGame = "daily_game"
)

// Notification is an inbox entry for one user
type Notification struct {
	SeqModel
	UserID  string `gorm:"type:varchar(26);not null;index"`
	Kind    string `gorm:"not null"`
	Message string `gorm:"type:text;not null"`
	FeedID  *int64
	ReadAt  *time.Time
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&Setting{}, &User{}, &BalanceGame{}, &Vote{}, &Feed{}, &Comment{}, &Notification{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by primary key
func FindByID[T any, K string | int64](db *gorm.DB, id K, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
