package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/models"
)

// NotificationResponse is one inbox entry
type NotificationResponse struct {
	ID        int64      `json:"notificationId"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	FeedID    *int64     `json:"feedId,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NotificationPageResponse is one page of the inbox
type NotificationPageResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	HasNext       bool                   `json:"hasNext"`
}

// @Summary List notifications
// @Description The caller's notifications, newest first, paged with lastId
// @Tags notifications
// @Produce json
// @Success 200 {object} NotificationPageResponse
// @Router /api/notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	session, _ := GetSessionData(c)

	req, err := pageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := models.Page[models.Notification](s.db.Where("user_id = ?", session.UserID), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	resp := NotificationPageResponse{
		Notifications: make([]NotificationResponse, 0, len(page.Items)),
		HasNext:       page.HasNext,
	}
	for _, n := range page.Items {
		resp.Notifications = append(resp.Notifications, NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Message:   n.Message,
			FeedID:    n.FeedID,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Mark notification read
// @Tags notifications
// @Param id path int true "Notification id"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [patch]
func (s *Server) markNotificationRead(c *gin.Context) {
	session, _ := GetSessionData(c)

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var notification models.Notification
	err = s.db.Where("id = ? AND user_id = ?", id, session.UserID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("notification_id", id).Msg("Failed to load notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Already read stays at its first read time
	if notification.ReadAt == nil {
		if err := s.db.Model(&notification).Update("read_at", s.clock.Now()).Error; err != nil {
			s.logger.Error().Err(err).Int64("notification_id", id).Msg("Failed to mark notification read")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.Status(http.StatusNoContent)
}
