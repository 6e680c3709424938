package models

import "time"

// APIHit stores aggregated request counts per day and route, feeding the
// public stats endpoint's daily-active figure.
type APIHit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_hit_date_path,unique;type:date;not null" json:"date"`
	Path      string    `gorm:"index;index:idx_hit_date_path,unique;size:255;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
