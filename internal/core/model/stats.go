package model

import (
	"fmt"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
)

// UserStats mirrors the server-side progression record.
type UserStats struct {
	ID               string `json:"id"`
	Level            int    `json:"level"`
	XP               int    `json:"xp"`
	TotalActivities  int    `json:"total_activities"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

// Badge is an achievement unlocked on the server.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	EarnedDate  string `json:"earned_date,omitempty"`
	IsEarned    bool   `json:"is_earned"`
}

// XPToNextLevel returns the XP needed to finish the current level.
func (s UserStats) XPToNextLevel() int {
	level := s.Level
	if level < 1 {
		level = 1
	}
	return constants.XPPerLevel * level
}

// LevelProgress returns how far into the current level the user is, 0-100.
func (s UserStats) LevelProgress() float64 {
	needed := s.XPToNextLevel()
	progress := float64(s.XP) / float64(needed) * 100
	if progress > 100 {
		return 100
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// FormatLevel renders "Level N (xp/next XP)".
func (s UserStats) FormatLevel() string {
	return fmt.Sprintf("Level %d (%d/%d XP)", s.Level, s.XP, s.XPToNextLevel())
}

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}
