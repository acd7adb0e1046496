package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rabotim/marketplace/internal/models"
)

// The category and city lists seed the browse filters and the alert
// form on the client.

func (h *handlerImpl) HandleGetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories})
}

func (h *handlerImpl) HandleGetCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cities": models.Cities,
		"all":    models.LocationAll,
	})
}
