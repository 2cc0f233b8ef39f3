// Package analytics computes the multi-day aggregates shown on the
// dashboard's analytics page from a plain activity list.
package analytics

import (
	"sort"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
)

// DailyPoint is one day of per-category minutes.
type DailyPoint struct {
	Date       string         `json:"date"`
	Categories map[string]int `json:"categories"`
	Total      int            `json:"total"`
}

// DatePoint is one day of minutes for a single category.
type DatePoint struct {
	Date     string `json:"date"`
	Duration int    `json:"duration"`
}

// Summary totals minutes per category over a window.
type Summary struct {
	From            string         `json:"from"`
	To              string         `json:"to"`
	CategoryTotals  map[string]int `json:"category_totals"`
	TotalActivities int            `json:"total_activities"`
	TotalMinutes    int            `json:"total_minutes"`
}

// Window returns the days dates ending at end (inclusive), oldest first.
func Window(end string, days int) ([]string, error) {
	endDate, err := model.ParseDate(end)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return []string{}, nil
	}

	dates := make([]string, days)
	for i := 0; i < days; i++ {
		dates[i] = endDate.AddDate(0, 0, i-days+1).Format(constants.DateLayout)
	}
	return dates, nil
}

// Daily groups activities per date and category for the window ending at end.
// Every date in the window gets a point, including days with nothing logged.
func Daily(activities []model.Activity, end string, days int) ([]DailyPoint, error) {
	dates, err := Window(end, days)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(dates))
	points := make([]DailyPoint, len(dates))
	for i, d := range dates {
		index[d] = i
		points[i] = DailyPoint{Date: d, Categories: make(map[string]int)}
	}

	for _, a := range activities {
		i, ok := index[a.Date]
		if !ok || a.Duration <= 0 {
			continue
		}
		points[i].Categories[a.CategoryName] += a.Duration
		points[i].Total += a.Duration
	}
	return points, nil
}

// Summarize totals category minutes and counts activities in the window ending at end.
func Summarize(activities []model.Activity, end string, days int) (*Summary, error) {
	dates, err := Window(end, days)
	if err != nil {
		return nil, err
	}

	s := &Summary{To: end, CategoryTotals: make(map[string]int)}
	if len(dates) == 0 {
		s.From = end
		return s, nil
	}
	s.From = dates[0]

	for _, a := range activities {
		// dates share one layout, so string order is date order
		if a.Date < s.From || a.Date > s.To {
			continue
		}
		s.TotalActivities++
		if a.Duration > 0 {
			s.CategoryTotals[a.CategoryName] += a.Duration
			s.TotalMinutes += a.Duration
		}
	}
	return s, nil
}

// CategorySeries returns per-date minutes of one category over the window ending at end.
func CategorySeries(activities []model.Activity, categoryID, end string, days int) ([]DatePoint, error) {
	dates, err := Window(end, days)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	for _, a := range activities {
		if a.CategoryID == categoryID && a.Duration > 0 {
			totals[a.Date] += a.Duration
		}
	}

	series := make([]DatePoint, len(dates))
	for i, d := range dates {
		series[i] = DatePoint{Date: d, Duration: totals[d]}
	}
	return series, nil
}

// CategoryShare is a category total with its share of the summary.
type CategoryShare struct {
	Name    string  `json:"name"`
	Minutes int     `json:"minutes"`
	Percent float64 `json:"percent"`
}

// Shares orders the summary's categories by minutes, largest first.
func (s *Summary) Shares() []CategoryShare {
	shares := make([]CategoryShare, 0, len(s.CategoryTotals))
	for name, minutes := range s.CategoryTotals {
		share := CategoryShare{Name: name, Minutes: minutes}
		if s.TotalMinutes > 0 {
			share.Percent = float64(minutes) / float64(s.TotalMinutes) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Minutes != shares[j].Minutes {
			return shares[i].Minutes > shares[j].Minutes
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}
