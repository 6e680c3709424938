package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pacekeeper/pacekeeper/models"
	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// WorkoutController records finished runs and serves workout history.
type WorkoutController struct {
	db      *gorm.DB
	streaks *services.StreakService
}

// NewWorkoutController creates a new controller instance.
func NewWorkoutController(db *gorm.DB, streaks *services.StreakService) *WorkoutController {
	return &WorkoutController{db: db, streaks: streaks}
}

// Create persists a finished workout and applies the streak completion rules,
// returning the result for immediate client feedback.
func (w *WorkoutController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		DistanceKm  float64 `json:"distance_km" binding:"min=0"`
		DurationSec int     `json:"duration_sec" binding:"min=0"`
		Route       string  `json:"route"`
		StartedAt   string  `json:"started_at"`
		FinishedAt  string  `json:"finished_at"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	now := time.Now()
	startedAt := now.Add(-time.Duration(req.DurationSec) * time.Second)
	finishedAt := now
	if t, err := time.Parse(time.RFC3339, req.StartedAt); err == nil {
		startedAt = t
	}
	if t, err := time.Parse(time.RFC3339, req.FinishedAt); err == nil {
		finishedAt = t
	}

	workout, result, err := w.streaks.CompleteWorkout(userID, services.WorkoutInput{
		DistanceKm:  req.DistanceKm,
		DurationSec: req.DurationSec,
		Route:       strings.TrimSpace(req.Route),
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
	})
	if err != nil {
		utils.Sugar.Errorf("workout completion failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to record workout")
		return
	}

	utils.Success(ctx, gin.H{
		"workout": workout,
		"result":  result,
	})
}

// List returns the user's workout history, newest first, paginated.
func (w *WorkoutController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := 1, 20
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	var total int64
	if err := w.db.Model(&models.Workout{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count workouts")
		return
	}

	var workouts []models.Workout
	err := w.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workouts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to retrieve workouts")
		return
	}

	utils.Success(ctx, gin.H{
		"items": workouts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// TodayDistance returns the sum of today's logged distance.
func (w *WorkoutController) TodayDistance(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// String date equality avoids timezone/type mismatches with DATE columns
	today := time.Now().In(time.Local).Format("2006-01-02")
	var distance float64
	err := w.db.Model(&models.Workout{}).
		Where("user_id = ? AND date = ?", userID, today).
		Select("COALESCE(SUM(distance_km),0)").
		Scan(&distance).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to sum today's distance")
		return
	}

	utils.Success(ctx, gin.H{"distance_km": distance})
}
