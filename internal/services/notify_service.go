package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rabotim/marketplace/internal/matching"
	"github.com/rabotim/marketplace/internal/models"
)

type notifyServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	alerts AlertService
}

func NewNotifyService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	alerts AlertService,
) NotifyService {
	return &notifyServiceImpl{
		logger: logger,
		pgPool: pgPool,
		alerts: alerts,
	}
}

func (s *notifyServiceImpl) DispatchTask(ctx context.Context, task *models.Task) (int, error) {
	subs, err := s.alerts.ActiveSubscriptions(ctx)
	if err != nil {
		return 0, err
	}

	matched := matching.Match(task, subs)
	if len(matched) == 0 {
		s.logger.Debug().
			Str("task_id", task.ID).
			Int("subscriptions", len(subs)).
			Msg("no subscriptions matched")
		return 0, nil
	}

	const insertNotificationQuery = `
INSERT INTO notifications (id,
                           subscription_id,
                           task_id,
                           user_id,
                           created_at,
                           sent_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	recorded := 0
	now := time.Now()
	for i := range matched {
		sub := &matched[i]

		// Immediate alerts are handed to the mail/push gateway right
		// away, so their row is born sent. Daily and weekly ones wait
		// for the digest flush.
		var sentAt *time.Time
		if sub.Frequency == models.FrequencyImmediate {
			sentAt = &now
		}

		_, err = s.pgPool.Exec(
			ctx,
			insertNotificationQuery,
			uuid.NewString(),
			sub.ID,
			task.ID,
			sub.UserID,
			now,
			sentAt,
		)
		if err != nil {
			// A redelivery of the same task hits the unique
			// (subscription_id, task_id) pair; that is the at-most-once
			// guarantee working, not a failure.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				s.logger.Debug().
					Str("task_id", task.ID).
					Str("subscription_id", sub.ID).
					Msg("notification already recorded")
				continue
			}

			s.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Str("subscription_id", sub.ID).
				Msg("failed to insert notification")
			return recorded, err
		}
		recorded++

		if sentAt != nil {
			s.logger.Info().
				Str("task_id", task.ID).
				Str("subscription_id", sub.ID).
				Str("user_id", sub.UserID).
				Bool("email", sub.EmailEnabled).
				Bool("push", sub.PushEnabled).
				Msg("sent immediate alert")
		}
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Int("matched", len(matched)).
		Int("recorded", recorded).
		Msg("dispatched task alerts")
	return recorded, nil
}

func (s *notifyServiceImpl) ListNotifications(ctx context.Context, userID string, limit uint32) ([]models.Notification, error) {
	if limit == 0 {
		limit = 50
	}

	const selectNotificationsQuery = `
SELECT n.id,
       n.subscription_id,
       n.task_id,
       t.title,
       n.created_at,
       n.sent_at
FROM notifications n
JOIN tasks t ON t.id = n.task_id
WHERE n.user_id = $1
ORDER BY n.created_at DESC
LIMIT $2
`
	rows, err := s.pgPool.Query(ctx, selectNotificationsQuery, userID, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select notifications")
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0, limit)
	for rows.Next() {
		n := models.Notification{UserID: userID}
		err = rows.Scan(
			&n.ID,
			&n.SubscriptionID,
			&n.TaskID,
			&n.TaskTitle,
			&n.CreatedAt,
			&n.SentAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan notification")
			return nil, err
		}
		notifications = append(notifications, n)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(notifications)).
		Str("user_id", userID).
		Msg("selected notifications")
	return notifications, nil
}

func (s *notifyServiceImpl) FlushDigest(ctx context.Context, freq models.Frequency) ([]models.Notification, error) {
	const flushDigestQuery = `
UPDATE notifications n
SET sent_at = $1
FROM alert_subscriptions s, tasks t
WHERE s.id = n.subscription_id
  AND t.id = n.task_id
  AND n.sent_at IS NULL
  AND s.frequency = $2
RETURNING n.id, n.subscription_id, n.task_id, n.user_id, t.title, n.created_at, n.sent_at
`
	rows, err := s.pgPool.Query(ctx, flushDigestQuery, time.Now(), freq)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("frequency", string(freq)).
			Msg("failed to flush digest")
		return nil, err
	}
	defer rows.Close()

	var flushed []models.Notification
	for rows.Next() {
		var n models.Notification
		err = rows.Scan(
			&n.ID,
			&n.SubscriptionID,
			&n.TaskID,
			&n.UserID,
			&n.TaskTitle,
			&n.CreatedAt,
			&n.SentAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan flushed notification")
			return nil, err
		}
		flushed = append(flushed, n)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	if len(flushed) > 0 {
		s.logger.Info().
			Str("frequency", string(freq)).
			Int("count", len(flushed)).
			Msg("flushed alert digest")
	}
	return flushed, nil
}
