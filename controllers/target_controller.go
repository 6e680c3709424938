package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// TargetController serves daily target values and the calendar month view.
type TargetController struct {
	streaks *services.StreakService
	targets *services.TargetService
}

// NewTargetController creates a new controller instance.
func NewTargetController(streaks *services.StreakService, targets *services.TargetService) *TargetController {
	return &TargetController{streaks: streaks, targets: targets}
}

// Today returns today's target, generating it from the current streak
// position if absent. An existing value is never altered mid-day.
func (t *TargetController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	targetKm, err := t.streaks.EnsureTodayTarget(userID)
	if err != nil {
		utils.Sugar.Errorf("ensure today target failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load today's target")
		return
	}

	utils.Success(ctx, gin.H{"target_km": targetKm})
}

// Month returns all target rows for one calendar month. Fully elapsed months
// are immutable, so those responses are cached in Redis.
func (t *TargetController) Month(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := ctx.Query("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2000 && n <= 2200 {
			year = n
		}
	}
	if v := ctx.Query("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = n
		}
	}

	pastMonth := year < now.Year() || (year == now.Year() && month < int(now.Month()))
	cacheKey := fmt.Sprintf("cache:targets:month:%d:%d-%02d", userID, year, month)
	if pastMonth {
		if b, hit := utils.CacheGetBytes(cacheKey); hit {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	rows, err := t.targets.MonthTargets(userID, year, time.Month(month))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load month targets")
		return
	}

	payload := gin.H{"year": year, "month": month, "targets": rows}
	if pastMonth {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, 24*time.Hour)
	}
	utils.Success(ctx, payload)
}
