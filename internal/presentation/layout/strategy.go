package layout

import (
	"io"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
)

// View is everything the live screen draws for one refresh.
type View struct {
	Model       *timeline.Model
	Today       string
	Source      string
	Stats       *model.UserStats
	LastRefresh time.Time
	Warning     string
	Color       bool
}

// IsToday reports whether the view shows the current date.
func (v *View) IsToday() bool {
	return v.Model != nil && v.Model.Date == v.Today
}

// LayoutStrategy defines the interface for different layout rendering strategies
type LayoutStrategy interface {
	Render(w io.Writer, view *View, sizer *Sizer) error
	GetName() string
}

const (
	StyleFull    = "full"
	StyleMinimal = "minimal"
)

// GetLayoutStrategy returns the strategy for a style name, defaulting to the full layout.
func GetLayoutStrategy(style string) LayoutStrategy {
	strategies := map[string]LayoutStrategy{
		StyleFull:    &FullLayoutStrategy{},
		StyleMinimal: &MinimalLayoutStrategy{},
	}

	if strategy, exists := strategies[style]; exists {
		return strategy
	}
	return &FullLayoutStrategy{}
}
