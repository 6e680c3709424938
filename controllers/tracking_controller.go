package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pacekeeper/pacekeeper/models"
	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// TrackingController manages live GPS recording sessions. Each session is an
// explicit handle owned by the client: started, appended to, and torn down
// through these endpoints.
type TrackingController struct {
	tracking *services.TrackingService
}

// NewTrackingController creates a new controller instance.
func NewTrackingController(tracking *services.TrackingService) *TrackingController {
	return &TrackingController{tracking: tracking}
}

// Start opens a tracking session and returns its token.
func (t *TrackingController) Start(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	session, err := t.tracking.Start(ctx.Request.Context(), userID)
	if err != nil {
		utils.Sugar.Errorf("tracking start failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to start tracking")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      session.Token,
		"started_at": session.StartedAt,
	})
}

// AppendPoints adds GPS samples to an open session.
func (t *TrackingController) AppendPoints(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Points []models.RoutePoint `json:"points" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	session, err := t.tracking.AppendPoints(ctx.Request.Context(), ctx.Param("session"), userID, req.Points)
	if err != nil {
		t.sessionError(ctx, userID, err)
		return
	}

	utils.Success(ctx, gin.H{
		"token":       session.Token,
		"point_count": len(session.Points),
		"distance_km": services.RouteDistanceKm(session.Points),
	})
}

// Finish closes the session, records the workout, and returns the streak
// completion result.
func (t *TrackingController) Finish(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	workout, result, err := t.tracking.Finish(ctx.Request.Context(), ctx.Param("session"), userID)
	if err != nil {
		t.sessionError(ctx, userID, err)
		return
	}

	utils.Success(ctx, gin.H{
		"workout": workout,
		"result":  result,
	})
}

func (t *TrackingController) sessionError(ctx *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		utils.Error(ctx, http.StatusNotFound, 40480, "tracking session not found")
	case errors.Is(err, services.ErrSessionForbidden):
		utils.Error(ctx, http.StatusForbidden, 40380, "tracking session belongs to another user")
	default:
		utils.Sugar.Errorf("tracking operation failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50081, "tracking operation failed")
	}
}
