package live

import (
	"sync"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/presentation/layout"
)

// StateManager owns the selected date and the last compiled model. The
// compiler never sees it; the date is passed to each refresh as a plain value.
type StateManager struct {
	mu sync.RWMutex

	date   string
	today  func() string
	layout string

	model       *timeline.Model
	stats       *model.UserStats
	lastRefresh time.Time
	warning     string
}

// NewStateManager starts on date, or on today when date is empty.
func NewStateManager(date string, today func() string, layoutStyle string) *StateManager {
	if date == "" {
		date = today()
	}
	if layoutStyle == "" {
		layoutStyle = layout.StyleFull
	}
	return &StateManager{date: date, today: today, layout: layoutStyle}
}

// Date returns the selected date.
func (sm *StateManager) Date() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.date
}

// Shift moves the selected date by days and returns the new date.
func (sm *StateManager) Shift(days int) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next, err := model.ShiftDate(sm.date, days)
	if err != nil {
		return sm.date, err
	}
	sm.date = next
	return next, nil
}

// JumpToday selects the current date.
func (sm *StateManager) JumpToday() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.date = sm.today()
	return sm.date
}

// Layout returns the active layout style.
func (sm *StateManager) Layout() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.layout
}

// ToggleLayout flips between the full and minimal layouts.
func (sm *StateManager) ToggleLayout() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.layout == layout.StyleFull {
		sm.layout = layout.StyleMinimal
	} else {
		sm.layout = layout.StyleFull
	}
	return sm.layout
}

// SetResult replaces the displayed model. Results compiled for a date that is
// no longer selected are dropped and SetResult reports false.
func (sm *StateManager) SetResult(m *timeline.Model, stats *model.UserStats, at time.Time) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if m == nil || m.Date != sm.date {
		return false
	}
	sm.model = m
	if stats != nil {
		sm.stats = stats
	}
	sm.lastRefresh = at
	sm.warning = ""
	return true
}

// SetWarning records a refresh problem shown in the footer. The previous
// model stays on screen.
func (sm *StateManager) SetWarning(msg string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.warning = msg
}

// View assembles what the layout draws.
func (sm *StateManager) View(source string, color bool) *layout.View {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	m := sm.model
	if m == nil || m.Date != sm.date {
		m = timeline.Compile(nil, nil, sm.date)
	}
	return &layout.View{
		Model:       m,
		Today:       sm.today(),
		Source:      source,
		Stats:       sm.stats,
		LastRefresh: sm.lastRefresh,
		Warning:     sm.warning,
		Color:       color,
	}
}
