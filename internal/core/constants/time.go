package constants

import "time"

const (
	// Day layout
	HoursPerDay    = 24
	MinutesPerHour = 60
	MinutesPerDay  = HoursPerDay * MinutesPerHour

	// Wire layouts used by the dashboard API
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// Analytics windows
	DefaultDailyWindowDays = 7
	SummaryWindowDays      = 30
	CategoryWindowDays     = 30
	HeatmapWindowDays      = 365

	// Refresh and caching defaults
	DefaultRefreshInterval = 10 * time.Second
	DefaultCacheTTL        = 30 * time.Second
	DefaultAPITimeout      = 15 * time.Second
	DefaultSnapshotMaxAge  = 5 * time.Minute
)

const (
	// XP awarded per logged minute and XP needed per level step
	XPPerMinute = 10
	XPPerLevel  = 100
)
