package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rabotim/marketplace/internal/models"
	"github.com/rabotim/marketplace/internal/services"
)

type alertResponse struct {
	ID           string    `json:"id"`
	Categories   []string  `json:"categories"`
	Locations    []string  `json:"locations"`
	MinBudget    float64   `json:"min_budget"`
	MaxBudget    float64   `json:"max_budget"`
	EmailEnabled bool      `json:"email_enabled"`
	PushEnabled  bool      `json:"push_enabled"`
	Frequency    string    `json:"frequency"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newAlertResponse(sub *models.AlertSubscription) alertResponse {
	categories := make([]string, len(sub.Categories))
	for i, c := range sub.Categories {
		categories[i] = string(c)
	}
	locations := sub.Locations
	if locations == nil {
		locations = []string{}
	}
	return alertResponse{
		ID:           sub.ID,
		Categories:   categories,
		Locations:    locations,
		MinBudget:    sub.MinBudget,
		MaxBudget:    sub.MaxBudget,
		EmailEnabled: sub.EmailEnabled,
		PushEnabled:  sub.PushEnabled,
		Frequency:    string(sub.Frequency),
		Active:       sub.Active,
		CreatedAt:    sub.CreatedAt,
	}
}

type alertRequest struct {
	Categories   []string `json:"categories"`
	Locations    []string `json:"locations"`
	MinBudget    float64  `json:"min_budget" binding:"gte=0"`
	MaxBudget    float64  `json:"max_budget" binding:"gte=0"`
	EmailEnabled bool     `json:"email_enabled"`
	PushEnabled  bool     `json:"push_enabled"`
	Frequency    string   `json:"frequency" binding:"omitempty,oneof=immediate daily weekly"`
}

func (r *alertRequest) toParams(userID string) services.SubscriptionParams {
	categories := make([]models.Category, len(r.Categories))
	for i, c := range r.Categories {
		categories[i] = models.Category(c)
	}
	return services.SubscriptionParams{
		UserID:       userID,
		Categories:   categories,
		Locations:    r.Locations,
		MinBudget:    r.MinBudget,
		MaxBudget:    r.MaxBudget,
		EmailEnabled: r.EmailEnabled,
		PushEnabled:  r.PushEnabled,
		Frequency:    models.Frequency(r.Frequency),
	}
}

func (h *handlerImpl) HandleCreateAlert(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	var req alertRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	sub, err := h.alerts.CreateSubscription(c, req.toParams(userID))
	if err != nil {
		h.abortAlertError(c, err, "failed to create subscription")
		return
	}

	c.JSON(http.StatusCreated, newAlertResponse(sub))
}

func (h *handlerImpl) HandleListAlerts(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	subs, err := h.alerts.ListSubscriptions(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list subscriptions")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	responses := make([]alertResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, newAlertResponse(&subs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"alerts": responses})
}

func (h *handlerImpl) HandleUpdateAlert(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	var req alertRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	sub, err := h.alerts.UpdateSubscription(c, c.Param("id"), req.toParams(userID))
	if err != nil {
		h.abortAlertError(c, err, "failed to update subscription")
		return
	}

	c.JSON(http.StatusOK, newAlertResponse(sub))
}

func (h *handlerImpl) HandleDeleteAlert(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	err := h.alerts.DeleteSubscription(c, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			abort(c, newNotFoundError("subscription not found"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete subscription")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) abortAlertError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, services.ErrSubscriptionUnbounded),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidBudgetRange),
		errors.Is(err, services.ErrInvalidFrequency):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, services.ErrSubscriptionNotFound):
		abort(c, newNotFoundError("subscription not found"))
	default:
		h.logger.Error().
			Err(err).
			Msg(logMsg)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
