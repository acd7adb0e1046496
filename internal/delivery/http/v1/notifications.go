package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rabotim/marketplace/internal/models"
)

type notificationResponse struct {
	ID             string     `json:"id"`
	SubscriptionID string     `json:"subscription_id"`
	TaskID         string     `json:"task_id"`
	TaskTitle      string     `json:"task_title"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}

func newNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:             n.ID,
		SubscriptionID: n.SubscriptionID,
		TaskID:         n.TaskID,
		TaskTitle:      n.TaskTitle,
		CreatedAt:      n.CreatedAt,
		SentAt:         n.SentAt,
	}
}

func (h *handlerImpl) HandleListNotifications(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	limit, err := parseUintParam(c, "limit")
	if err != nil {
		abort(c, newBadRequestError("invalid limit"))
		return
	}

	notifications, err := h.notify.ListNotifications(c, userID, limit)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list notifications")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	responses := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, newNotificationResponse(&notifications[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": responses})
}
