package models

import "time"

type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyImmediate || f == FrequencyDaily || f == FrequencyWeekly
}

// AlertSubscription is a standing filter a user registers to be told
// about new matching tasks. Empty Categories or Locations mean "any";
// a zero MaxBudget means "no upper bound".
type AlertSubscription struct {
	ID           string
	UserID       string
	Categories   []Category
	Locations    []string
	MinBudget    float64
	MaxBudget    float64
	EmailEnabled bool
	PushEnabled  bool
	Frequency    Frequency
	Active       bool
	CreatedAt    time.Time
}

// IsWildcard reports whether every filter dimension is unconstrained.
// Such subscriptions are rejected at creation, but matching still treats
// them as "match every active task" for consistency with the
// empty-filter-is-wildcard rule.
func (s *AlertSubscription) IsWildcard() bool {
	return len(s.Categories) == 0 &&
		len(s.Locations) == 0 &&
		s.MinBudget <= 0 &&
		s.MaxBudget <= 0
}

func (s *AlertSubscription) HasCategory(c Category) bool {
	for _, sc := range s.Categories {
		if sc == c {
			return true
		}
	}
	return false
}
