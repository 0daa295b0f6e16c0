package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

// CreateFeedRequest represents a request to publish a post
type CreateFeedRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
	GameID  *int64 `json:"gameId" binding:"omitempty,gt=0"`
}

// CreateCommentRequest represents a request to comment on a post
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

// FeedResponse is one post of the feed
type FeedResponse struct {
	ID             int64     `json:"feedId"`
	AuthorID       string    `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	GameID         *int64    `json:"gameId,omitempty"`
	CommentCount   int64     `json:"commentCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CommentResponse is one comment on a post
type CommentResponse struct {
	ID             int64     `json:"commentId"`
	FeedID         int64     `json:"feedId"`
	AuthorID       string    `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FeedPageResponse is one page of the feed
type FeedPageResponse struct {
	Feeds   []FeedResponse `json:"feeds"`
	HasNext bool           `json:"hasNext"`
}

// CommentPageResponse is one page of comments
type CommentPageResponse struct {
	Comments []CommentResponse `json:"comments"`
	HasNext  bool              `json:"hasNext"`
}

func newFeedResponse(feed *models.Feed, commentCount int64) FeedResponse {
	return FeedResponse{
		ID:             feed.ID,
		AuthorID:       feed.AuthorID,
		AuthorNickname: feed.Author.Nickname,
		Content:        feed.Content,
		GameID:         feed.GameID,
		CommentCount:   commentCount,
		CreatedAt:      feed.CreatedAt,
	}
}

func newCommentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:             comment.ID,
		FeedID:         comment.FeedID,
		AuthorID:       comment.AuthorID,
		AuthorNickname: comment.Author.Nickname,
		Content:        comment.Content,
		CreatedAt:      comment.CreatedAt,
	}
}

// @Summary List feed
// @Description Newest posts first, paged with lastId
// @Tags feeds
// @Produce json
// @Param lastId query int false "Return posts older than this id"
// @Param size query int false "Page size (1-50, default 10)"
// @Success 200 {object} FeedPageResponse
// @Router /api/feeds [get]
func (s *Server) listFeeds(c *gin.Context) {
	req, err := pageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := models.Page[models.Feed](s.db.Preload("Author"), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list feeds")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feeds"})
		return
	}

	counts, err := s.commentCounts(page.Items)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feeds"})
		return
	}

	resp := FeedPageResponse{Feeds: make([]FeedResponse, 0, len(page.Items)), HasNext: page.HasNext}
	for i := range page.Items {
		resp.Feeds = append(resp.Feeds, newFeedResponse(&page.Items[i], counts[page.Items[i].ID]))
	}
	c.JSON(http.StatusOK, resp)
}

// commentCounts counts comments per feed for one page of posts
func (s *Server) commentCounts(feeds []models.Feed) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(feeds))
	if len(feeds) == 0 {
		return counts, nil
	}

	ids := make([]int64, 0, len(feeds))
	for _, f := range feeds {
		ids = append(ids, f.ID)
	}

	var rows []struct {
		FeedID int64
		Count  int64
	}
	err := s.db.Model(&models.Comment{}).
		Select("feed_id, COUNT(*) AS count").
		Where("feed_id IN ?", ids).
		Group("feed_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.FeedID] = r.Count
	}
	return counts, nil
}

// @Summary Create post
// @Tags feeds
// @Accept json
// @Produce json
// @Param request body CreateFeedRequest true "Post"
// @Success 201 {object} FeedResponse
// @Router /api/feeds [post]
func (s *Server) createFeed(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is empty"})
		return
	}

	if req.GameID != nil {
		var game models.BalanceGame
		if err := models.FindByID(s.db, *req.GameID, &game); err != nil || !game.Published() {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
	}

	feed := models.Feed{AuthorID: session.UserID, Content: content, GameID: req.GameID}
	if err := s.db.Create(&feed).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create feed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feed"})
		return
	}
	if err := s.db.Preload("Author").First(&feed, feed.ID).Error; err != nil {
		s.logger.Error().Err(err).Int64("feed_id", feed.ID).Msg("Failed to reload feed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feed"})
		return
	}

	s.logger.Info().Int64("feed_id", feed.ID).Str("user_id", session.UserID).Msg("Feed created")
	c.JSON(http.StatusCreated, newFeedResponse(&feed, 0))
}

// @Summary List comments
// @Description Newest comments first, paged with lastId
// @Tags feeds
// @Produce json
// @Param id path int true "Feed id"
// @Success 200 {object} CommentPageResponse
// @Router /api/feeds/{id}/comments [get]
func (s *Server) listComments(c *gin.Context) {
	feed, ok := s.loadFeed(c)
	if !ok {
		return
	}

	req, err := pageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := models.Page[models.Comment](s.db.Preload("Author").Where("feed_id = ?", feed.ID), req)
	if err != nil {
		s.logger.Error().Err(err).Int64("feed_id", feed.ID).Msg("Failed to list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}

	resp := CommentPageResponse{Comments: make([]CommentResponse, 0, len(page.Items)), HasNext: page.HasNext}
	for i := range page.Items {
		resp.Comments = append(resp.Comments, newCommentResponse(&page.Items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Comment on a post
// @Description Notifies the post author in the background
// @Tags feeds
// @Accept json
// @Produce json
// @Param id path int true "Feed id"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Router /api/feeds/{id}/comments [post]
func (s *Server) createComment(c *gin.Context) {
	session, _ := GetSessionData(c)

	feed, ok := s.loadFeed(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is empty"})
		return
	}

	comment := models.Comment{FeedID: feed.ID, AuthorID: session.UserID, Content: content}
	if err := s.db.Create(&comment).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	if err := s.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("Failed to reload comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	// The comment is saved either way; a lost notification is only logged
	task, err := tasks.NewCommentNotificationTask(comment.ID)
	if err == nil {
		_, err = s.asynqClient.Enqueue(task)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("Failed to enqueue comment notification")
	}

	s.logger.Info().
		Int64("comment_id", comment.ID).
		Int64("feed_id", feed.ID).
		Str("user_id", session.UserID).
		Msg("Comment created")
	c.JSON(http.StatusCreated, newCommentResponse(&comment))
}

func (s *Server) loadFeed(c *gin.Context) (*models.Feed, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	var feed models.Feed
	if err := models.FindByID(s.db, id, &feed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Int64("feed_id", id).Msg("Failed to load feed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &feed, true
}
