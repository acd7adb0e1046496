package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rabotim/marketplace/internal/services"
)

type Handler interface {
	HandleAuthMiddleware(c *gin.Context)

	HandleSearchTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)
	HandleApplyToTask(c *gin.Context)

	HandleCreateAlert(c *gin.Context)
	HandleListAlerts(c *gin.Context)
	HandleUpdateAlert(c *gin.Context)
	HandleDeleteAlert(c *gin.Context)

	HandleListNotifications(c *gin.Context)

	HandleGetCategories(c *gin.Context)
	HandleGetCities(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	tasks  services.TaskService
	alerts services.AlertService
	notify services.NotifyService

	jwtIssuer     string
	jwtSigningKey []byte
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
	alertService services.AlertService,
	notifyService services.NotifyService,
	jwtIssuer string,
	jwtSigningKey string,
) Handler {
	return &handlerImpl{
		logger:        logger,
		tasks:         taskService,
		alerts:        alertService,
		notify:        notifyService,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: []byte(jwtSigningKey),
	}
}
