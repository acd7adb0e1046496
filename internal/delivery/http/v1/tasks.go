package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rabotim/marketplace/internal/models"
	"github.com/rabotim/marketplace/internal/search"
	"github.com/rabotim/marketplace/internal/services"
)

type taskResponse struct {
	ID           string     `json:"id"`
	PosterID     string     `json:"poster_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Location     string     `json:"location"`
	Price        float64    `json:"price"`
	PriceType    string     `json:"price_type"`
	Urgent       bool       `json:"urgent"`
	Remote       bool       `json:"remote"`
	Views        int64      `json:"views"`
	Applications int64      `json:"applications"`
	PosterRating float64    `json:"poster_rating"`
	CreatedAt    time.Time  `json:"created_at"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Status       string     `json:"status"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:           task.ID,
		PosterID:     task.PosterID,
		Title:        task.Title,
		Description:  task.Description,
		Category:     string(task.Category),
		Location:     task.Location,
		Price:        task.Price,
		PriceType:    string(task.PriceType),
		Urgent:       task.Urgent,
		Remote:       task.Remote,
		Views:        task.Views,
		Applications: task.Applications,
		PosterRating: task.PosterRating,
		CreatedAt:    task.CreatedAt,
		Deadline:     task.Deadline,
		Status:       string(task.Status),
	}
}

// HandleSearchTasks serves the public browse endpoint. Every query
// parameter is optional; unparsable numbers are rejected rather than
// silently ignored so a broken client notices.
func (h *handlerImpl) HandleSearchTasks(c *gin.Context) {
	q := search.Query{
		FreeText:   c.Query("q"),
		Category:   models.Category(c.Query("category")),
		Location:   c.Query("location"),
		UrgentOnly: c.Query("urgent") == "true",
		Sort:       search.SortKey(c.Query("sort")),
	}

	var err error
	q.PriceMin, err = parseFloatParam(c, "price_min")
	if err != nil {
		abort(c, newBadRequestError("invalid price_min"))
		return
	}
	q.PriceMax, err = parseFloatParam(c, "price_max")
	if err != nil {
		abort(c, newBadRequestError("invalid price_max"))
		return
	}
	q.MinRating, err = parseFloatParam(c, "min_rating")
	if err != nil {
		abort(c, newBadRequestError("invalid min_rating"))
		return
	}

	offset, err := parseUintParam(c, "offset")
	if err != nil {
		abort(c, newBadRequestError("invalid offset"))
		return
	}
	limit, err := parseUintParam(c, "limit")
	if err != nil {
		abort(c, newBadRequestError("invalid limit"))
		return
	}

	tasks, err := h.tasks.SearchTasks(c, q, offset, limit)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to search tasks")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, newTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses, "count": len(responses)})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.GetTaskByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError("task not found"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=120"`
	Description string     `json:"description" binding:"max=4000"`
	Category    string     `json:"category" binding:"required"`
	Location    string     `json:"location" binding:"required,max=120"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	PriceType   string     `json:"price_type" binding:"required,oneof=fixed hourly"`
	Urgent      bool       `json:"urgent"`
	Remote      bool       `json:"remote"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		PosterID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    models.Category(req.Category),
		Location:    req.Location,
		Price:       req.Price,
		PriceType:   models.PriceType(req.PriceType),
		Urgent:      req.Urgent,
		Remote:      req.Remote,
		Deadline:    req.Deadline,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCategory),
			errors.Is(err, services.ErrInvalidPrice),
			errors.Is(err, services.ErrInvalidDeadline):
			abort(c, newBadRequestError(err.Error()))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to create task")
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active assigned in_progress completed cancelled"`
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	userID, ok := h.contextUserID(c)
	if !ok {
		return
	}

	var req setTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c, services.UpdateTaskStatusParams{
		TaskID:   c.Param("id"),
		PosterID: userID,
		Status:   models.Status(req.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError("task not found"))
		case errors.Is(err, services.ErrNotTaskPoster):
			abort(c, newForbiddenError("only the poster can change task status"))
		case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInvalidStatus):
			abort(c, newConflictError(err.Error()))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to update task status")
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleApplyToTask(c *gin.Context) {
	_, ok := h.contextUserID(c)
	if !ok {
		return
	}

	err := h.tasks.ApplyToTask(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError("task not found or no longer active"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to apply to task")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseFloatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseUintParam(c *gin.Context, name string) (uint32, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}
