package services

import (
	"context"
	"errors"
	"time"

	"github.com/rabotim/marketplace/internal/models"
	"github.com/rabotim/marketplace/internal/search"
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidDeadline       = errors.New("invalid deadline")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrNotTaskPoster         = errors.New("not the task poster")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionUnbounded = errors.New("subscription matches everything")
	ErrInvalidFrequency      = errors.New("invalid delivery frequency")
	ErrInvalidBudgetRange    = errors.New("invalid budget range")
)

type TaskService interface {
	// CreateTask stores a new active task and hands it to the notifier,
	// which decides whose alert subscriptions it matches. A dispatch
	// failure is logged but never fails the creation.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTaskByID returns the task and bumps its view counter. Views
	// only ever grow.
	//
	// It returns ErrTaskNotFound if no task has the given ID.
	GetTaskByID(ctx context.Context, taskID string) (*models.Task, error)

	// SearchTasks loads the active-task snapshot with poster ratings
	// attached and runs the browse query over it. Offset and limit
	// slice the ordered result; a zero limit means a server default.
	SearchTasks(ctx context.Context, q search.Query, offset, limit uint32) ([]models.Task, error)

	// UpdateTaskStatus moves a task along its one-way lifecycle.
	//
	// It returns ErrNotTaskPoster when the caller does not own the
	// task and ErrInvalidTransition when the lifecycle graph forbids
	// the move.
	UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error)

	// ApplyToTask registers one more application on an active task.
	ApplyToTask(ctx context.Context, taskID string) error
}

type AlertService interface {
	// CreateSubscription validates and stores a new alert filter.
	//
	// It returns ErrSubscriptionUnbounded when every filter dimension
	// is empty; a match-everything subscription is rejected here even
	// though the matcher would tolerate it.
	CreateSubscription(ctx context.Context, params SubscriptionParams) (*models.AlertSubscription, error)

	ListSubscriptions(ctx context.Context, userID string) ([]models.AlertSubscription, error)

	// UpdateSubscription replaces the filter and delivery settings of
	// an existing subscription. Owner only.
	UpdateSubscription(ctx context.Context, subscriptionID string, params SubscriptionParams) (*models.AlertSubscription, error)

	// DeleteSubscription removes the subscription. Owner only.
	DeleteSubscription(ctx context.Context, subscriptionID, userID string) error

	// ActiveSubscriptions returns the snapshot the matcher runs
	// against when a task is created.
	ActiveSubscriptions(ctx context.Context) ([]models.AlertSubscription, error)
}

type NotifyService interface {
	// DispatchTask matches the task against the current subscription
	// snapshot and records one notification per match. Recording is
	// at-most-once per (subscription, task) pair; replays are skipped,
	// not errors. It returns the number of newly recorded matches.
	DispatchTask(ctx context.Context, task *models.Task) (int, error)

	ListNotifications(ctx context.Context, userID string, limit uint32) ([]models.Notification, error)

	// FlushDigest marks all unsent notifications for subscriptions
	// with the given frequency as sent and returns them, grouped for
	// the sender. The external mail/push gateway consumes the result.
	FlushDigest(ctx context.Context, freq models.Frequency) ([]models.Notification, error)
}

type CreateTaskParams struct {
	PosterID    string
	Title       string
	Description string
	Category    models.Category
	Location    string
	Price       float64
	PriceType   models.PriceType
	Urgent      bool
	Remote      bool
	Deadline    *time.Time
}

type UpdateTaskStatusParams struct {
	TaskID   string
	PosterID string
	Status   models.Status
}

type SubscriptionParams struct {
	UserID       string
	Categories   []models.Category
	Locations    []string
	MinBudget    float64
	MaxBudget    float64
	EmailEnabled bool
	PushEnabled  bool
	Frequency    models.Frequency
}
