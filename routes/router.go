package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pacekeeper/pacekeeper/config"
	"github.com/pacekeeper/pacekeeper/controllers"
	"github.com/pacekeeper/pacekeeper/middleware"
	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// SetupRouter wires routes, middlewares, services, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record per-day route hits after each request
	r.Use(middleware.ActivityRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	targetService := services.NewTargetService(db, cfg.TargetWindowDays)
	shopService := services.NewShopService(db)
	streakService := services.NewStreakService(db, targetService, shopService, services.StreakConfig{
		WindowDays:       cfg.TargetWindowDays,
		DefaultPenaltyKm: cfg.DefaultPenaltyKm,
		RPPerExcessKm:    cfg.RPPerExcessKm,
	})
	trackingService := services.NewTrackingService(utils.GetRedis(), streakService, 6*time.Hour)

	authController := controllers.NewAuthController(db)
	streakController := controllers.NewStreakController(streakService)
	targetController := controllers.NewTargetController(streakService, targetService)
	workoutController := controllers.NewWorkoutController(db, streakService)
	shopController := controllers.NewShopController(shopService)
	trackingController := controllers.NewTrackingController(trackingService)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public stats endpoint
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/streak", streakController.GetStreak)
	protected.POST("/streak/reconcile", streakController.Reconcile)

	protected.GET("/targets/today", targetController.Today)
	protected.GET("/targets/month", targetController.Month)

	protected.POST("/workouts", workoutController.Create)
	protected.GET("/workouts", workoutController.List)
	protected.GET("/workouts/today/distance", workoutController.TodayDistance)

	protected.GET("/shop/items", shopController.ListItems)
	protected.POST("/shop/purchase", shopController.Purchase)
	protected.GET("/shop/credits", shopController.ListCredits)

	protected.POST("/tracking/start", trackingController.Start)
	protected.POST("/tracking/:session/points", trackingController.AppendPoints)
	protected.POST("/tracking/:session/finish", trackingController.Finish)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
