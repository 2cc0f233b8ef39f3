package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserStatsLevelProgress(t *testing.T) {
	tests := []struct {
		name     string
		stats    UserStats
		next     int
		progress float64
	}{
		{"fresh user", UserStats{Level: 1, XP: 0}, 100, 0},
		{"halfway level 1", UserStats{Level: 1, XP: 50}, 100, 50},
		{"level 3", UserStats{Level: 3, XP: 150}, 300, 50},
		{"zero level treated as 1", UserStats{Level: 0, XP: 20}, 100, 20},
		{"overflow capped", UserStats{Level: 2, XP: 500}, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.next, tt.stats.XPToNextLevel())
			assert.InDelta(t, tt.progress, tt.stats.LevelProgress(), 0.001)
		})
	}
}

func TestUserStatsFormatLevel(t *testing.T) {
	s := UserStats{Level: 4, XP: 120}
	assert.Equal(t, "Level 4 (120/400 XP)", s.FormatLevel())
}
