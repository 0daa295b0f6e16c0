package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/models"
)

// VoteRequest represents a vote on a balance game
type VoteRequest struct {
	Option string `json:"option" binding:"required,oneof=A B"`
}

// CreateGameRequest represents a request to schedule a balance game
type CreateGameRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	OptionA  string `json:"optionA" binding:"required,max=100"`
	OptionB  string `json:"optionB" binding:"required,max=100"`
	PlayDate string `json:"playDate" binding:"required,playdate"`
}

// GameResponse is a published or scheduled balance game
type GameResponse struct {
	ID       int64  `json:"gameId"`
	Title    string `json:"title"`
	OptionA  string `json:"optionA"`
	OptionB  string `json:"optionB"`
	PlayDate string `json:"playDate"`
}

// VoteInfoResponse holds the results of a game and the caller's vote
type VoteInfoResponse struct {
	GameID int64  `json:"gameId"`
	CountA int64  `json:"countA"`
	CountB int64  `json:"countB"`
	MyVote string `json:"myVote,omitempty"`
}

func newGameResponse(game *models.BalanceGame) GameResponse {
	return GameResponse{
		ID:       game.ID,
		Title:    game.Title,
		OptionA:  game.OptionA,
		OptionB:  game.OptionB,
		PlayDate: game.PlayDate,
	}
}

// @Summary Today's game
// @Tags games
// @Produce json
// @Success 200 {object} GameResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/games/today [get]
func (s *Server) getTodayGame(c *gin.Context) {
	today := s.clock.Now().Format(models.PlayDateLayout)

	var game models.BalanceGame
	err := s.db.Where("play_date = ? AND published_at IS NOT NULL", today).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No game today"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("play_date", today).Msg("Failed to load today's game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(&game))
}

// @Summary Vote
// @Description One vote per user and game
// @Tags games
// @Accept json
// @Param id path int true "Game id"
// @Param request body VoteRequest true "Vote"
// @Success 201 {object} VoteInfoResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/games/{id}/votes [post]
func (s *Server) vote(c *gin.Context) {
	session, _ := GetSessionData(c)

	game, ok := s.loadPublishedGame(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote := models.Vote{GameID: game.ID, UserID: session.UserID, Option: req.Option}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("game_id = ? AND user_id = ?", game.ID, session.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyVoted
		}
		return tx.Create(&vote).Error
	})
	if errors.Is(err, errAlreadyVoted) || isUniqueViolation(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "Already voted"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to save vote")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save vote"})
		return
	}

	info, err := s.voteInfo(game.ID, session.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to count votes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Info().Int64("game_id", game.ID).Str("user_id", session.UserID).Msg("Vote saved")
	c.JSON(http.StatusCreated, info)
}

var errAlreadyVoted = errors.New("already voted")

// isUniqueViolation catches the race where two requests pass the existence check
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"))
}

// @Summary Vote results
// @Tags games
// @Produce json
// @Param id path int true "Game id"
// @Success 200 {object} VoteInfoResponse
// @Router /api/games/{id}/votes [get]
func (s *Server) getVoteInfo(c *gin.Context) {
	session, _ := GetSessionData(c)

	game, ok := s.loadPublishedGame(c)
	if !ok {
		return
	}

	info, err := s.voteInfo(game.ID, session.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to count votes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) voteInfo(gameID int64, userID string) (*VoteInfoResponse, error) {
	var rows []struct {
		Option string
		Count  int64
	}
	err := s.db.Model(&models.Vote{}).
		Select("option, COUNT(*) AS count").
		Where("game_id = ?", gameID).
		Group("option").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	info := &VoteInfoResponse{GameID: gameID}
	for _, r := range rows {
		switch r.Option {
		case "A":
			info.CountA = r.Count
		case "B":
			info.CountB = r.Count
		}
	}

	var mine models.Vote
	err = s.db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&mine).Error
	switch {
	case err == nil:
		info.MyVote = mine.Option
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return info, nil
}

// @Summary Schedule a game
// @Description Admin only. One game per play date.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateGameRequest true "Game"
// @Success 201 {object} GameResponse
// @Failure 409 {object} map[string]interface{}
// @Router /api/admin/games [post]
func (s *Server) createGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := models.BalanceGame{
		Title:    strings.TrimSpace(req.Title),
		OptionA:  strings.TrimSpace(req.OptionA),
		OptionB:  strings.TrimSpace(req.OptionB),
		PlayDate: req.PlayDate,
	}

	var existing int64
	if err := s.db.Model(&models.BalanceGame{}).Where("play_date = ?", req.PlayDate).Count(&existing).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check play date")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A game is already scheduled for " + req.PlayDate})
		return
	}

	if err := s.db.Create(&game).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A game is already scheduled for " + req.PlayDate})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	s.logger.Info().Int64("game_id", game.ID).Str("play_date", game.PlayDate).Msg("Game scheduled")
	c.JSON(http.StatusCreated, newGameResponse(&game))
}

// loadPublishedGame resolves :id. Unpublished games are reported as missing.
func (s *Server) loadPublishedGame(c *gin.Context) (*models.BalanceGame, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	var game models.BalanceGame
	err = models.FindByID(s.db, id, &game)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !game.Published()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return nil, false
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("game_id", id).Msg("Failed to load game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &game, true
}
