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
)

type alertServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewAlertService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) AlertService {
	return &alertServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func validateSubscriptionParams(params *SubscriptionParams) error {
	for _, c := range params.Categories {
		if !c.Valid() {
			return ErrInvalidCategory
		}
	}
	if params.MinBudget < 0 || params.MaxBudget < 0 {
		return ErrInvalidBudgetRange
	}
	if params.MaxBudget > 0 && params.MinBudget > params.MaxBudget {
		return ErrInvalidBudgetRange
	}
	if params.Frequency == "" {
		params.Frequency = models.FrequencyImmediate
	}
	if !params.Frequency.Valid() {
		return ErrInvalidFrequency
	}

	sub := models.AlertSubscription{
		Categories: params.Categories,
		Locations:  params.Locations,
		MinBudget:  params.MinBudget,
		MaxBudget:  params.MaxBudget,
	}
	if sub.IsWildcard() {
		return ErrSubscriptionUnbounded
	}
	return nil
}

func (s *alertServiceImpl) CreateSubscription(ctx context.Context, params SubscriptionParams) (*models.AlertSubscription, error) {
	err := validateSubscriptionParams(&params)
	if err != nil {
		return nil, err
	}

	sub := &models.AlertSubscription{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		Categories:   params.Categories,
		Locations:    params.Locations,
		MinBudget:    params.MinBudget,
		MaxBudget:    params.MaxBudget,
		EmailEnabled: params.EmailEnabled,
		PushEnabled:  params.PushEnabled,
		Frequency:    params.Frequency,
		Active:       true,
		CreatedAt:    time.Now(),
	}

	const insertSubscriptionQuery = `
INSERT INTO alert_subscriptions (id,
                                 user_id,
                                 categories,
                                 locations,
                                 min_budget,
                                 max_budget,
                                 email_enabled,
                                 push_enabled,
                                 frequency,
                                 active,
                                 created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertSubscriptionQuery,
		sub.ID,
		sub.UserID,
		categoriesToStrings(sub.Categories),
		sub.Locations,
		sub.MinBudget,
		sub.MaxBudget,
		sub.EmailEnabled,
		sub.PushEnabled,
		sub.Frequency,
		sub.Active,
		sub.CreatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert subscription")
		return nil, err
	}

	s.logger.Info().
		Str("subscription_id", sub.ID).
		Str("user_id", sub.UserID).
		Msg("created alert subscription")
	return sub, nil
}

func (s *alertServiceImpl) ListSubscriptions(ctx context.Context, userID string) ([]models.AlertSubscription, error) {
	const selectSubscriptionsByUserQuery = `
SELECT id,
       categories,
       locations,
       min_budget,
       max_budget,
       email_enabled,
       push_enabled,
       frequency,
       active,
       created_at
FROM alert_subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectSubscriptionsByUserQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select subscriptions")
		return nil, err
	}
	defer rows.Close()

	subs, err := s.scanSubscriptions(rows, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(subs)).
		Str("user_id", userID).
		Msg("selected subscriptions by user id")
	return subs, nil
}

func (s *alertServiceImpl) UpdateSubscription(ctx context.Context, subscriptionID string, params SubscriptionParams) (*models.AlertSubscription, error) {
	err := validateSubscriptionParams(&params)
	if err != nil {
		return nil, err
	}

	sub := &models.AlertSubscription{
		ID:           subscriptionID,
		UserID:       params.UserID,
		Categories:   params.Categories,
		Locations:    params.Locations,
		MinBudget:    params.MinBudget,
		MaxBudget:    params.MaxBudget,
		EmailEnabled: params.EmailEnabled,
		PushEnabled:  params.PushEnabled,
		Frequency:    params.Frequency,
		Active:       true,
	}

	// The user_id predicate doubles as the ownership check.
	const updateSubscriptionQuery = `
UPDATE alert_subscriptions
SET categories = $1,
    locations = $2,
    min_budget = $3,
    max_budget = $4,
    email_enabled = $5,
    push_enabled = $6,
    frequency = $7,
    active = $8
WHERE id = $9 AND user_id = $10
RETURNING created_at
`
	err = s.pgPool.QueryRow(
		ctx,
		updateSubscriptionQuery,
		categoriesToStrings(sub.Categories),
		sub.Locations,
		sub.MinBudget,
		sub.MaxBudget,
		sub.EmailEnabled,
		sub.PushEnabled,
		sub.Frequency,
		sub.Active,
		sub.ID,
		sub.UserID,
	).Scan(&sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("subscription_id", sub.ID).
				Str("user_id", sub.UserID).
				Msg("subscription not found")
			return nil, ErrSubscriptionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("subscription_id", sub.ID).
			Msg("failed to update subscription")
		return nil, err
	}

	s.logger.Info().
		Str("subscription_id", sub.ID).
		Str("user_id", sub.UserID).
		Msg("updated alert subscription")
	return sub, nil
}

func (s *alertServiceImpl) DeleteSubscription(ctx context.Context, subscriptionID, userID string) error {
	const deleteSubscriptionQuery = `
DELETE FROM alert_subscriptions
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(ctx, deleteSubscriptionQuery, subscriptionID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("subscription_id", subscriptionID).
			Msg("failed to delete subscription")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("subscription_id", subscriptionID).
			Str("user_id", userID).
			Msg("subscription not found")
		return ErrSubscriptionNotFound
	}

	s.logger.Info().
		Str("subscription_id", subscriptionID).
		Str("user_id", userID).
		Msg("deleted alert subscription")
	return nil
}

func (s *alertServiceImpl) ActiveSubscriptions(ctx context.Context) ([]models.AlertSubscription, error) {
	const selectActiveSubscriptionsQuery = `
SELECT id,
       user_id,
       categories,
       locations,
       min_budget,
       max_budget,
       email_enabled,
       push_enabled,
       frequency,
       active,
       created_at
FROM alert_subscriptions
WHERE active
ORDER BY created_at
`
	rows, err := s.pgPool.Query(ctx, selectActiveSubscriptionsQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select active subscriptions")
		return nil, err
	}
	defer rows.Close()

	subs, err := s.scanSubscriptions(rows, "")
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(subs)).
		Msg("selected active subscriptions")
	return subs, nil
}

// scanSubscriptions reads subscription rows. When userID is empty the
// rows are expected to carry their own user_id column right after id.
func (s *alertServiceImpl) scanSubscriptions(rows pgx.Rows, userID string) ([]models.AlertSubscription, error) {
	var subs []models.AlertSubscription
	for rows.Next() {
		sub := models.AlertSubscription{UserID: userID}
		var categories []string

		dest := []any{&sub.ID}
		if userID == "" {
			dest = append(dest, &sub.UserID)
		}
		dest = append(dest,
			&categories,
			&sub.Locations,
			&sub.MinBudget,
			&sub.MaxBudget,
			&sub.EmailEnabled,
			&sub.PushEnabled,
			&sub.Frequency,
			&sub.Active,
			&sub.CreatedAt,
		)

		err := rows.Scan(dest...)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan subscription")
			return nil, err
		}
		sub.Categories = stringsToCategories(categories)
		subs = append(subs, sub)
	}

	err := rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return subs, nil
}

func categoriesToStrings(categories []models.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func stringsToCategories(values []string) []models.Category {
	out := make([]models.Category, len(values))
	for i, v := range values {
		out[i] = models.Category(v)
	}
	return out
}
