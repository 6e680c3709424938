package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pacekeeper/pacekeeper/models"
)

// newTestDB opens an in-memory SQLite database with the full schema. The pool
// is capped at one connection so every query sees the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Streak{},
		&models.DailyTarget{},
		&models.Workout{},
		&models.ShopItem{},
		&models.Purchase{},
	)
	require.NoError(t, err)
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, points int) *models.User {
	t.Helper()
	user := models.User{Username: "runner", RunPoints: points}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// fixedClock returns a now func pinned to the given instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// newStreakStack builds the target/shop/streak service trio sharing one fake
// clock, with defaults matching production tuning.
func newStreakStack(db *gorm.DB, at time.Time) (*TargetService, *ShopService, *StreakService) {
	targets := NewTargetService(db, 90)
	targets.now = fixedClock(at)

	shop := NewShopService(db)
	shop.now = fixedClock(at)

	streaks := NewStreakService(db, targets, shop, StreakConfig{
		WindowDays:       90,
		DefaultPenaltyKm: 2.0,
		RPPerExcessKm:    10,
	})
	streaks.now = fixedClock(at)
	return targets, shop, streaks
}

// seedStreak writes a streak row with explicit columns, bypassing gorm's
// automatic timestamps so history can be placed in the past.
func seedStreak(t *testing.T, db *gorm.DB, userID uint, current, longest int, penaltyKm float64, lastRun time.Time) *models.Streak {
	t.Helper()

	streak := models.Streak{UserID: userID}
	require.NoError(t, db.Create(&streak).Error)

	lastDate := dateOf(lastRun)
	require.NoError(t, db.Model(&models.Streak{}).Where("id = ?", streak.ID).
		UpdateColumns(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
			"penalty_km":     penaltyKm,
			"last_run_date":  lastDate,
			"updated_at":     lastRun,
		}).Error)

	streak.CurrentStreak = current
	streak.LongestStreak = longest
	streak.PenaltyKm = penaltyKm
	streak.LastRunDate = &lastDate
	streak.UpdatedAt = lastRun
	return &streak
}

// seedTarget inserts one daily target row directly.
func seedTarget(t *testing.T, db *gorm.DB, userID uint, date time.Time, streakDay int, targetKm float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.DailyTarget{
		UserID:    userID,
		Date:      dateOf(date),
		StreakDay: streakDay,
		TargetKm:  targetKm,
	}).Error)
}

// seedSkipCard inserts the forgiveness consumable into the catalogue.
func seedSkipCard(t *testing.T, db *gorm.DB, priceRP, weeklyCap, validHours int) *models.ShopItem {
	t.Helper()
	item := models.ShopItem{
		Code:       models.ItemCodeSkipCard,
		Name:       "Skip Card",
		PriceRP:    priceRP,
		WeeklyCap:  weeklyCap,
		ValidHours: validHours,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func loadStreak(t *testing.T, db *gorm.DB, userID uint) *models.Streak {
	t.Helper()
	var streak models.Streak
	require.NoError(t, db.Where("user_id = ?", userID).First(&streak).Error)
	return &streak
}

func loadUser(t *testing.T, db *gorm.DB, userID uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return &user
}
