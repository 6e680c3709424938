package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pacekeeper/pacekeeper/models"
	"github.com/pacekeeper/pacekeeper/utils"
)

// StatsController provides aggregate statistics such as counts and daily active users.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the service.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var workoutCount int64
	var totalKm float64
	var dailyActive int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Workout{}).Count(&workoutCount).Error; err != nil {
		workoutCount = 0
	}

	if err := s.db.Model(&models.Workout{}).
		Select("COALESCE(SUM(distance_km),0)").
		Scan(&totalKm).Error; err != nil {
		totalKm = 0
	}

	// Daily active: sum of today's API hits across all routes.
	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.APIHit{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyActive).Error; err != nil {
		dailyActive = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":         userCount,
		"workout_count":      workoutCount,
		"total_distance_km":  totalKm,
		"daily_active_count": dailyActive,
	})
}
