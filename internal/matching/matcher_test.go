package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabotim/marketplace/internal/models"
)

func sofiaRepairTask() *models.Task {
	return &models.Task{
		ID:       "task-1",
		Category: models.CategoryRepair,
		Location: "София, Лозенец",
		Price:    2500,
		Status:   models.StatusActive,
	}
}

func TestMatch_FilterRules(t *testing.T) {
	t.Parallel()

	t.Run("Should match a subscription whose every dimension fits", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{
			ID:         "sub-1",
			Categories: []models.Category{models.CategoryRepair},
			Locations:  []string{"София"},
			MinBudget:  1000,
			MaxBudget:  3000,
		}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		require.Len(t, got, 1)
		assert.Equal(t, "sub-1", got[0].ID)
	})
	t.Run("Should reject when the price is over budget", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{
			Categories: []models.Category{models.CategoryRepair},
			Locations:  []string{"София"},
			MinBudget:  1000,
			MaxBudget:  2000,
		}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Empty(t, got)
	})
	t.Run("Should reject a non-member category", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{
			Categories: []models.Category{models.CategoryCleaning, models.CategoryDelivery},
		}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Empty(t, got)
	})
	t.Run("Should match when any listed city is a substring of the location", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{
			Locations: []string{"Пловдив", "София"},
		}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Len(t, got, 1)
	})
	t.Run("Should not match a city the location does not contain", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{
			Locations: []string{"Варна"},
		}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Empty(t, got)
	})
}

func TestMatch_BudgetBoundaries(t *testing.T) {
	t.Parallel()

	t.Run("Should include a price exactly at the upper bound", func(t *testing.T) {
		t.Parallel()
		task := sofiaRepairTask()
		task.Price = 3000
		sub := models.AlertSubscription{MaxBudget: 3000}

		got := Match(task, []models.AlertSubscription{sub})
		assert.Len(t, got, 1)
	})
	t.Run("Should exclude a price just above the upper bound", func(t *testing.T) {
		t.Parallel()
		task := sofiaRepairTask()
		task.Price = 3000.01
		sub := models.AlertSubscription{MaxBudget: 3000}

		got := Match(task, []models.AlertSubscription{sub})
		assert.Empty(t, got)
	})
	t.Run("Should include a price exactly at the lower bound", func(t *testing.T) {
		t.Parallel()
		task := sofiaRepairTask()
		task.Price = 1000
		sub := models.AlertSubscription{MinBudget: 1000}

		got := Match(task, []models.AlertSubscription{sub})
		assert.Len(t, got, 1)
	})
}

func TestMatch_StatusGating(t *testing.T) {
	t.Parallel()

	statuses := []models.Status{
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
		models.Status("garbage"),
	}
	for _, status := range statuses {
		status := status
		t.Run("Should never fire for status "+string(status), func(t *testing.T) {
			t.Parallel()
			task := sofiaRepairTask()
			task.Status = status
			sub := models.AlertSubscription{
				Categories: []models.Category{models.CategoryRepair},
				Locations:  []string{"София"},
			}

			got := Match(task, []models.AlertSubscription{sub})
			assert.Empty(t, got)
		})
	}
}

func TestMatch_Wildcards(t *testing.T) {
	t.Parallel()

	t.Run("Should treat empty categories and locations as match-anything", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{MinBudget: 100, MaxBudget: 5000}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Len(t, got, 1)
	})
	t.Run("Should still apply the budget to an otherwise unconstrained subscription", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{MinBudget: 3000}

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Empty(t, got)
	})
	t.Run("Should match every active task for a fully wildcard subscription", func(t *testing.T) {
		t.Parallel()
		sub := models.AlertSubscription{}
		require.True(t, sub.IsWildcard())

		got := Match(sofiaRepairTask(), []models.AlertSubscription{sub})
		assert.Len(t, got, 1)
	})
}

func TestMatch_OrderAndPurity(t *testing.T) {
	t.Parallel()

	t.Run("Should preserve input order among matches", func(t *testing.T) {
		t.Parallel()
		subs := []models.AlertSubscription{
			{ID: "a", Locations: []string{"София"}},
			{ID: "b", Categories: []models.Category{models.CategoryCleaning}},
			{ID: "c", MinBudget: 1},
			{ID: "d", Categories: []models.Category{models.CategoryRepair}},
		}

		got := Match(sofiaRepairTask(), subs)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
		assert.Equal(t, "d", got[2].ID)
	})
	t.Run("Should return empty for an empty subscription set", func(t *testing.T) {
		t.Parallel()
		got := Match(sofiaRepairTask(), nil)
		assert.Empty(t, got)
	})
	t.Run("Should return identical results on repeated calls", func(t *testing.T) {
		t.Parallel()
		task := sofiaRepairTask()
		subs := []models.AlertSubscription{
			{ID: "a", Locations: []string{"София"}},
			{ID: "b", MaxBudget: 100},
		}

		first := Match(task, subs)
		second := Match(task, subs)
		assert.Equal(t, first, second)
	})
}
