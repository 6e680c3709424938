package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// StreakController exposes the streak record and missed-day reconciliation.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController creates a new controller instance.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// GetStreak returns the user's streak record, creating it lazily.
func (s *StreakController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak, err := s.streaks.Get(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load streak")
		return
	}

	utils.Success(ctx, streak)
}

// Reconcile processes missed days since the last run. Called on app open;
// idempotent within a calendar day.
func (s *StreakController) Reconcile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	penaltyAdded, err := s.streaks.Reconcile(userID)
	if err != nil {
		utils.Sugar.Errorf("reconcile failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to reconcile streak")
		return
	}

	streak, err := s.streaks.Get(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load streak")
		return
	}

	utils.Success(ctx, gin.H{
		"penalty_added_km": penaltyAdded,
		"streak":           streak,
	})
}
