// Package search filters and orders task collections for browsing.
// It is a pure in-memory engine: it never mutates its input, performs
// no I/O and holds no state, so overlapping browse requests can share
// the same snapshot freely.
package search

import (
	"sort"
	"strings"

	"github.com/rabotim/marketplace/internal/models"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortRating    SortKey = "rating"
	SortPopular   SortKey = "popular"
)

// Query is a transient browse request. Zero values mean "filter not
// applied": empty FreeText, empty Category, empty or the all-cities
// sentinel Location, nil price bounds, nil MinRating. An empty or
// unknown Sort falls back to SortNewest.
type Query struct {
	FreeText   string
	Category   models.Category
	Location   string
	PriceMin   *float64
	PriceMax   *float64
	UrgentOnly bool
	MinRating  *float64
	Sort       SortKey
}

// Search returns the tasks satisfying every active filter of q, ordered
// by the query's sort key. The sort is stable, so tasks with equal keys
// keep their input order. A PriceMin above PriceMax simply matches
// nothing; malformed queries never fail.
func Search(tasks []models.Task, q Query) []models.Task {
	text := strings.ToLower(strings.TrimSpace(q.FreeText))

	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if matches(&tasks[i], q, text) {
			out = append(out, tasks[i])
		}
	}

	sortTasks(out, q.Sort)
	return out
}

func matches(t *models.Task, q Query, text string) bool {
	if text != "" &&
		!strings.Contains(strings.ToLower(t.Title), text) &&
		!strings.Contains(strings.ToLower(t.Description), text) {
		return false
	}
	// Category is an exact match; location is a substring match. The
	// asymmetry is part of the browse contract.
	if q.Category != "" && !t.InCategory(q.Category) {
		return false
	}
	if q.Location != "" && q.Location != models.LocationAll && !t.LocationMatches(q.Location) {
		return false
	}
	if q.PriceMin != nil && t.Price < *q.PriceMin {
		return false
	}
	if q.PriceMax != nil && t.Price > *q.PriceMax {
		return false
	}
	if q.UrgentOnly && !t.Urgent {
		return false
	}
	if q.MinRating != nil && t.PosterRating < *q.MinRating {
		return false
	}
	return true
}

func sortTasks(tasks []models.Task, key SortKey) {
	switch key {
	case SortOldest:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case SortPriceLow:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Price < tasks[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Price > tasks[j].Price
		})
	case SortRating:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].PosterRating > tasks[j].PosterRating
		})
	case SortPopular:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Views > tasks[j].Views
		})
	default:
		// SortNewest, empty and unknown keys all land here.
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}
