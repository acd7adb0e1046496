package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rabotim/marketplace/internal/models"
	"github.com/rabotim/marketplace/internal/search"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	pgPool   *pgxpool.Pool
	notifier NotifyService
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	notifier NotifyService,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		pgPool:   pgPool,
		notifier: notifier,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if !params.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if params.PriceType != models.PriceTypeFixed && params.PriceType != models.PriceTypeHourly {
		return nil, ErrInvalidPrice
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	if params.Deadline != nil && params.Deadline.Before(now) {
		return nil, ErrInvalidDeadline
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		PosterID:    params.PosterID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Location:    params.Location,
		Price:       params.Price,
		PriceType:   params.PriceType,
		Urgent:      params.Urgent,
		Remote:      params.Remote,
		CreatedAt:   now,
		Deadline:    params.Deadline,
		Status:      models.StatusActive,
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   poster_id,
                   title,
                   description,
                   category,
                   location,
                   price,
                   price_type,
                   urgent,
                   remote,
                   created_at,
                   deadline,
                   status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.PosterID,
		task.Title,
		task.Description,
		task.Category,
		task.Location,
		task.Price,
		task.PriceType,
		task.Urgent,
		task.Remote,
		task.CreatedAt,
		task.Deadline,
		task.Status,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Info().
		Str("task_id", task.ID).
		Str("category", string(task.Category)).
		Msg("created task")

	matched, err := s.notifier.DispatchTask(ctx, task)
	if err != nil {
		// The task exists either way; alerting is best-effort.
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to dispatch task alerts")
		return task, nil
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("matched", matched).
		Msg("dispatched task alerts")

	return task, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	task := &models.Task{ID: taskID}

	// The view counter is bumped in the same statement that loads the
	// task, so it only ever grows.
	const viewTaskQuery = `
UPDATE tasks
SET views = views + 1
WHERE id = $1
RETURNING poster_id,
          title,
          description,
          category,
          location,
          price,
          price_type,
          urgent,
          remote,
          views,
          applications,
          (SELECT COALESCE(p.rating, 0) FROM profiles p WHERE p.user_id = tasks.poster_id),
          created_at,
          deadline,
          status
`
	var rating *float64
	err := s.pgPool.QueryRow(
		ctx,
		viewTaskQuery,
		task.ID,
	).Scan(
		&task.PosterID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Location,
		&task.Price,
		&task.PriceType,
		&task.Urgent,
		&task.Remote,
		&task.Views,
		&task.Applications,
		&rating,
		&task.CreatedAt,
		&task.Deadline,
		&task.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task by id")
		return nil, err
	}
	if rating != nil {
		task.PosterRating = *rating
	}

	s.logger.Debug().
		Str("task_id", task.ID).
		Int64("views", task.Views).
		Msg("selected task by id")
	return task, nil
}

func (s *taskServiceImpl) SearchTasks(ctx context.Context, q search.Query, offset, limit uint32) ([]models.Task, error) {
	if limit == 0 {
		limit = 20
	}

	const selectActiveTasksQuery = `
SELECT t.id,
       t.poster_id,
       t.title,
       t.description,
       t.category,
       t.location,
       t.price,
       t.price_type,
       t.urgent,
       t.remote,
       t.views,
       t.applications,
       COALESCE(p.rating, 0),
       t.created_at,
       t.deadline,
       t.status
FROM tasks t
LEFT JOIN profiles p ON p.user_id = t.poster_id
WHERE t.status = 'active'
`
	rows, err := s.pgPool.Query(ctx, selectActiveTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select active tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		err = rows.Scan(
			&task.ID,
			&task.PosterID,
			&task.Title,
			&task.Description,
			&task.Category,
			&task.Location,
			&task.Price,
			&task.PriceType,
			&task.Urgent,
			&task.Remote,
			&task.Views,
			&task.Applications,
			&task.PosterRating,
			&task.CreatedAt,
			&task.Deadline,
			&task.Status,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	result := search.Search(tasks, q)
	s.logger.Debug().
		Int("loaded", len(tasks)).
		Int("matched", len(result)).
		Str("sort", string(q.Sort)).
		Msg("searched tasks")

	if int(offset) >= len(result) {
		return []models.Task{}, nil
	}
	result = result[offset:]
	if int(limit) < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error) {
	switch params.Status {
	case models.StatusActive, models.StatusAssigned, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	const selectTaskStatusQuery = `
SELECT poster_id, status
FROM tasks
WHERE id = $1
`
	var (
		posterID string
		current  models.Status
	)
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskStatusQuery,
		params.TaskID,
	).Scan(&posterID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", params.TaskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to select task status")
		return nil, err
	}

	if posterID != params.PosterID {
		s.logger.Warn().
			Str("task_id", params.TaskID).
			Str("user_id", params.PosterID).
			Msg("status change denied, not the poster")
		return nil, ErrNotTaskPoster
	}
	if !current.CanTransitionTo(params.Status) {
		s.logger.Warn().
			Str("task_id", params.TaskID).
			Str("from", string(current)).
			Str("to", string(params.Status)).
			Msg("invalid status transition")
		return nil, ErrInvalidTransition
	}

	task := &models.Task{
		ID:       params.TaskID,
		PosterID: posterID,
		Status:   params.Status,
	}

	// The WHERE clause repeats the precondition so a concurrent
	// transition loses cleanly instead of rewinding the lifecycle.
	const updateTaskStatusQuery = `
UPDATE tasks
SET status = $1
WHERE id = $2 AND status = $3
RETURNING title,
          description,
          category,
          location,
          price,
          price_type,
          urgent,
          remote,
          views,
          applications,
          created_at,
          deadline
`
	err = s.pgPool.QueryRow(
		ctx,
		updateTaskStatusQuery,
		task.Status,
		task.ID,
		current,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Location,
		&task.Price,
		&task.PriceType,
		&task.Urgent,
		&task.Remote,
		&task.Views,
		&task.Applications,
		&task.CreatedAt,
		&task.Deadline,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task status")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("from", string(current)).
		Str("to", string(task.Status)).
		Msg("updated task status")
	return task, nil
}

func (s *taskServiceImpl) ApplyToTask(ctx context.Context, taskID string) error {
	const applyToTaskQuery = `
UPDATE tasks
SET applications = applications + 1
WHERE id = $1 AND status = 'active'
`
	tag, err := s.pgPool.Exec(ctx, applyToTaskQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to record application")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("task_id", taskID).
			Msg("task not found or not active")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("recorded application")
	return nil
}
