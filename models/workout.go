package models

import "time"

// Workout is one completed run. Rows are append-only: never updated or
// deleted once created.
type Workout struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Date       time.Time `gorm:"index;type:date;not null" json:"date"`
	DistanceKm float64   `gorm:"not null" json:"distance_km"`
	DurationSec int      `gorm:"not null;default:0" json:"duration_sec"`
	Route      string    `gorm:"type:text" json:"route"` // JSON array of GPS points, optionally empty
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoutePoint is a single GPS sample inside a workout route.
type RoutePoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"ts"` // unix milliseconds
}
