package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
)

var (
	ErrInvalidClock    = errors.New("invalid start time")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidActivity = errors.New("invalid activity")
)

// Activity is one logged occurrence of a tracked behavior.
//
// CategoryName is copied from the category when the activity is created and
// is never refreshed from the category list afterwards, so renaming or
// deleting a category leaves historical activities displayed as logged.
type Activity struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category_id" validate:"required"`
	CategoryName string `json:"category_name" validate:"required"`
	Date         string `json:"date" validate:"required|calendarDate"`
	StartTime    string `json:"start_time" validate:"required|clock"`
	Duration     int    `json:"duration" validate:"min:0"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Category groups activities under a display label and color.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color"`
	IsCustom  bool   `json:"is_custom"`
	CreatedAt string `json:"created_at,omitempty"`
}

func init() {
	validate.AddValidator("clock", func(val any) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		_, _, err := ParseClock(s)
		return err == nil
	})
	validate.AddValidator("calendarDate", func(val any) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		_, err := ParseDate(s)
		return err == nil
	})
}

// Validate checks the record the way the dashboard form does before it is submitted.
func (a Activity) Validate() error {
	v := validate.Struct(&a)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidActivity, v.Errors.One())
	}
	return nil
}

// Clock returns the parsed start hour and minute.
func (a Activity) Clock() (int, int, error) {
	return ParseClock(a.StartTime)
}

// ParseClock parses a 24-hour "HH:MM" time of day. A single-digit hour is accepted.
func ParseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hs) == 0 || len(hs) > 2 || len(ms) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour >= constants.HoursPerDay {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute >= constants.MinutesPerHour {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour, minute, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ShiftDate moves a "YYYY-MM-DD" date by the given number of days.
func ShiftDate(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(constants.DateLayout), nil
}

// FindCategory looks a category up by ID.
func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FindCategoryByName looks a category up by display name.
func FindCategoryByName(categories []Category, name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
