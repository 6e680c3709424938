package models

import "time"

// Streak is the per-user running streak record. One row per user, created
// lazily with zero defaults on first access and never deleted while the user
// exists. LongestStreak >= CurrentStreak after every update.
type Streak struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak int        `gorm:"default:0" json:"current_streak"`
	LongestStreak int        `gorm:"default:0" json:"longest_streak"`
	PenaltyKm     float64    `gorm:"default:0" json:"penalty_km"`
	LastRunDate   *time.Time `gorm:"type:date" json:"last_run_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
