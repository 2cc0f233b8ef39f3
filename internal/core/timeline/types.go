package timeline

import "sort"

// Segment is the portion of one activity that falls inside one hour bucket.
type Segment struct {
	ActivityID        string `json:"activityId"`
	CategoryName      string `json:"categoryName"`
	Color             string `json:"color,omitempty"` // empty when the category is unknown
	Notes             string `json:"notes,omitempty"`
	MinutesInHour     int    `json:"minutesInHour"`
	StartMinuteInHour int    `json:"startMinuteInHour"`
}

// HourBucket holds the segments placed in one local hour of the day.
type HourBucket struct {
	Hour         int       `json:"hour"`
	Segments     []Segment `json:"segments"`
	TotalMinutes int       `json:"totalMinutes"`
}

// CategoryTotal is the logged duration of one category on the target date.
type CategoryTotal struct {
	Duration int    `json:"duration"`
	Color    string `json:"color,omitempty"`
}

// Model is the compiled view of a single day.
type Model struct {
	Date          string                   `json:"date"`
	Hours         []HourBucket             `json:"hours"`
	TotalDuration int                      `json:"totalDuration"` // logged minutes, truncation ignored
	PlacedMinutes int                      `json:"placedMinutes"`
	Truncated     int                      `json:"truncatedMinutes"` // logged minutes past midnight
	Breakdown     map[string]CategoryTotal `json:"categoryBreakdown"`
	Rejected      []string                 `json:"rejected,omitempty"`
}

// BreakdownEntry is a named CategoryTotal used for ordered rendering.
type BreakdownEntry struct {
	Name string `json:"name"`
	CategoryTotal
}

// IsEmpty reports whether nothing was logged on the day.
func (m *Model) IsEmpty() bool {
	return m.TotalDuration == 0 && len(m.Breakdown) == 0
}

// ActiveHours returns the buckets that hold at least one segment, in hour order.
func (m *Model) ActiveHours() []HourBucket {
	var active []HourBucket
	for _, b := range m.Hours {
		if len(b.Segments) > 0 {
			active = append(active, b)
		}
	}
	return active
}

// SortedBreakdown orders the breakdown by duration (largest first), then by name.
func (m *Model) SortedBreakdown() []BreakdownEntry {
	entries := make([]BreakdownEntry, 0, len(m.Breakdown))
	for name, total := range m.Breakdown {
		entries = append(entries, BreakdownEntry{Name: name, CategoryTotal: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Duration != entries[j].Duration {
			return entries[i].Duration > entries[j].Duration
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
