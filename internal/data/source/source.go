// Package source loads activities and categories from the dashboard, either
// through its REST API or from a local data directory.
package source

import (
	"context"
	"errors"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("source unavailable")
	ErrReadOnly    = errors.New("source is read-only")
)

// Query narrows an activity listing. The date range only applies when both
// bounds are set, matching the dashboard API.
type Query struct {
	CategoryID string
	StartDate  string
	EndDate    string
}

// ForDate returns the query for a single calendar date.
func ForDate(date string) Query {
	return Query{StartDate: date, EndDate: date}
}

// Between returns the query for an inclusive date range.
func Between(start, end string) Query {
	return Query{StartDate: start, EndDate: end}
}

// Key renders q as a stable string, used as a cache key.
func (q Query) Key() string {
	return q.CategoryID + "|" + q.StartDate + "|" + q.EndDate
}

// Match reports whether a satisfies q.
func (q Query) Match(a model.Activity) bool {
	if q.CategoryID != "" && a.CategoryID != q.CategoryID {
		return false
	}
	if q.StartDate != "" && q.EndDate != "" {
		if a.Date < q.StartDate || a.Date > q.EndDate {
			return false
		}
	}
	return true
}

// Source provides read access to activities and categories.
type Source interface {
	Activities(ctx context.Context, q Query) ([]model.Activity, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Name() string
}

// Writer records new activities.
type Writer interface {
	AddActivity(ctx context.Context, a model.Activity) (model.Activity, error)
}

// Versioned sources can report a token that changes whenever their data
// does. Caches use it to drop stale entries early.
type Versioned interface {
	Version() string
}

// Unwrapper is implemented by sources that decorate another source.
type Unwrapper interface {
	Unwrap() Source
}

// As walks the decorator chain starting at src and returns the first source
// implementing T.
func As[T any](src Source) (T, bool) {
	for src != nil {
		if t, ok := src.(T); ok {
			return t, true
		}
		u, ok := src.(Unwrapper)
		if !ok {
			break
		}
		src = u.Unwrap()
	}
	var zero T
	return zero, false
}

// Filter returns the activities matching q, keeping their order.
func Filter(activities []model.Activity, q Query) []model.Activity {
	out := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		if q.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
