package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryCleaning  Category = "cleaning"
	CategoryRepair    Category = "repair"
	CategoryDelivery  Category = "delivery"
	CategoryMoving    Category = "moving"
	CategoryGardening Category = "gardening"
	CategoryLessons   Category = "lessons"
	CategoryCare      Category = "care"
	CategoryAssembly  Category = "assembly"
	CategoryOther     Category = "other"
)

var Categories = []Category{
	CategoryCleaning,
	CategoryRepair,
	CategoryDelivery,
	CategoryMoving,
	CategoryGardening,
	CategoryLessons,
	CategoryCare,
	CategoryAssembly,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type PriceType string

const (
	PriceTypeFixed  PriceType = "fixed"
	PriceTypeHourly PriceType = "hourly"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// statusTransitions is the one-way task lifecycle graph.
// Completed and cancelled are terminal; nothing moves backward.
var statusTransitions = map[Status][]Status{
	StatusActive:     {StatusAssigned, StatusInProgress, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// LocationAll is the sentinel city value meaning "no location filter".
const LocationAll = "Всички градове"

// Cities is the fixed list offered by the browsing UI. Task locations
// remain free-form; the list only seeds filter and alert forms.
var Cities = []string{
	"София",
	"Пловдив",
	"Варна",
	"Бургас",
	"Русе",
	"Стара Загора",
	"Плевен",
	"Велико Търново",
	"Благоевград",
}

type Task struct {
	ID           string
	PosterID     string
	Title        string
	Description  string
	Category     Category
	Location     string
	Price        float64
	PriceType    PriceType
	Urgent       bool
	Remote       bool
	Views        int64
	Applications int64
	// PosterRating is not owned by the task; the task service fills it
	// from the poster's profile when it loads tasks for browsing.
	PosterRating float64
	CreatedAt    time.Time
	Deadline     *time.Time
	Status       Status
}

// InCategory reports an exact category match. Categories never match by
// substring, unlike locations.
func (t *Task) InCategory(c Category) bool {
	return t.Category == c
}

// LocationMatches reports whether the task's free-form location contains
// the given city, case-insensitively. A task in "София, Лозенец" matches
// the city filter "София". The substring rule is deliberate and must stay
// asymmetric with the exact category match.
func (t *Task) LocationMatches(city string) bool {
	return strings.Contains(strings.ToLower(t.Location), strings.ToLower(city))
}

// PriceWithin reports whether the price lies in [min, max], both bounds
// inclusive. A max of zero or below means "no upper bound".
func (t *Task) PriceWithin(min, max float64) bool {
	if t.Price < min {
		return false
	}
	if max > 0 && t.Price > max {
		return false
	}
	return true
}
