// Package matching decides which alert subscriptions fire for a task.
// Like search, it is pure and snapshot-based: callers pass the full set
// of active subscriptions and get back the matching subset. Delivery
// bookkeeping (dedup, digest batching) belongs to the dispatcher above.
package matching

import "github.com/rabotim/marketplace/internal/models"

// Match returns the subscriptions that should be notified about task,
// preserving the input order. Only active tasks ever match; for any
// other status the result is empty regardless of the filters.
func Match(task *models.Task, subs []models.AlertSubscription) []models.AlertSubscription {
	matched := make([]models.AlertSubscription, 0)
	if task.Status != models.StatusActive {
		return matched
	}

	for i := range subs {
		if Matches(task, &subs[i]) {
			matched = append(matched, subs[i])
		}
	}
	return matched
}

// Matches tests one subscription against one task. Empty filter
// dimensions are wildcards, so a fully unconstrained subscription
// (invalid at creation, but possible in old data) matches every task
// that fits its budget. Location uses the same case-insensitive
// substring rule as browsing; category is exact.
func Matches(task *models.Task, sub *models.AlertSubscription) bool {
	if len(sub.Categories) > 0 && !sub.HasCategory(task.Category) {
		return false
	}
	if len(sub.Locations) > 0 && !anyLocationMatches(task, sub.Locations) {
		return false
	}
	return task.PriceWithin(sub.MinBudget, sub.MaxBudget)
}

func anyLocationMatches(task *models.Task, cities []string) bool {
	for _, city := range cities {
		if task.LocationMatches(city) {
			return true
		}
	}
	return false
}
