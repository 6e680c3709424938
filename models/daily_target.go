package models

import "time"

// DailyTarget stores the distance goal for one user and one calendar date.
// Rows are generated ahead of time in a rolling window and upserted when the
// streak position changes; rows before today are historical and are never
// rewritten by regeneration.
type DailyTarget struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;index:idx_target_user_date,unique;not null" json:"user_id"`
	Date      time.Time `gorm:"index:idx_target_user_date,unique;type:date;not null" json:"date"`
	TargetKm  float64   `gorm:"not null" json:"target_km"`
	StreakDay int       `gorm:"not null" json:"streak_day"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
