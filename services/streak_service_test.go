package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacekeeper/pacekeeper/models"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

func TestFirstWorkoutStartsStreak(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)

	workout, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{
		DistanceKm:  1.25,
		DurationSec: 600,
		StartedAt:   testNow.Add(-10 * time.Minute),
		FinishedAt:  testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.TargetKm)
	assert.True(t, res.TargetMet)
	assert.Equal(t, 2, res.RPEarned)
	assert.Equal(t, 0.0, res.PenaltyCleared)
	assert.Equal(t, 1, res.NewStreak)
	assert.Equal(t, 0.0, res.PenaltyKm)

	assert.NotZero(t, workout.ID)
	assert.True(t, sameDay(workout.Date, testNow))

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
	require.NotNil(t, streak.LastRunDate)
	assert.True(t, sameDay(*streak.LastRunDate, testNow))

	assert.Equal(t, 2, loadUser(t, db, user.ID).RunPoints)
}

func TestExcessDistanceEarnsRunPoints(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 10)
	_, _, streaks := newStreakStack(db, testNow)
	seedTarget(t, db, user.ID, testNow, 21, 2.0)

	_, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 2.37})
	require.NoError(t, err)

	assert.Equal(t, 2.0, res.TargetKm)
	assert.True(t, res.TargetMet)
	// 0.37 km over, 10 RP per whole km, floored
	assert.Equal(t, 3, res.RPEarned)
	assert.Equal(t, 13, loadUser(t, db, user.ID).RunPoints)
}

func TestPenaltyClearedBeforeTarget(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 5, 5, 2.0, testNow.AddDate(0, 0, -1))
	seedTarget(t, db, user.ID, testNow, 6, 1.5)

	_, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 3.0})
	require.NoError(t, err)

	assert.Equal(t, 2.0, res.PenaltyCleared)
	// 1.0 km left after the debt, short of the 1.5 km target
	assert.False(t, res.TargetMet)
	assert.Equal(t, 0, res.RPEarned)
	assert.Equal(t, 5, res.NewStreak)
	assert.Equal(t, 0.0, res.PenaltyKm)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 5, streak.CurrentStreak)
	assert.Equal(t, 0.0, streak.PenaltyKm)
	require.NotNil(t, streak.LastRunDate)
	assert.True(t, sameDay(*streak.LastRunDate, testNow))
}

func TestReconcileSingleMissAddsPenalty(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 10, 10, 0, testNow.AddDate(0, 0, -2))
	seedTarget(t, db, user.ID, testNow.AddDate(0, 0, -1), 11, 3.0)

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 10, streak.CurrentStreak)
	assert.Equal(t, 3.0, streak.PenaltyKm)

	// Reconciling again the same day is a no-op
	added, err = streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, added)
	assert.Equal(t, 3.0, loadStreak(t, db, user.ID).PenaltyKm)
}

func TestReconcileSingleMissFallsBackToDefaultPenalty(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 4, 4, 0, testNow.AddDate(0, 0, -2))

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, added)
}

func TestReconcileMultiMissHardResets(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	targets, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 20, 20, 5.0, testNow.AddDate(0, 0, -4))
	seedTarget(t, db, user.ID, testNow.AddDate(0, 0, 1), 22, 8.0)

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	// A hard reset wipes debt instead of compounding it
	assert.Equal(t, 0.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 0, streak.CurrentStreak)
	assert.Equal(t, 20, streak.LongestStreak)
	assert.Equal(t, 0.0, streak.PenaltyKm)

	// The curve restarts at day one today
	today, err := targets.TodayTarget(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, today.StreakDay)
	assert.Equal(t, 1.0, today.TargetKm)

	var tomorrow models.DailyTarget
	require.NoError(t, db.Where("user_id = ? AND date = ?", user.ID, dateOf(testNow).AddDate(0, 0, 1)).
		First(&tomorrow).Error)
	assert.Equal(t, 2, tomorrow.StreakDay)
}

func TestReconcileSkipCardsCoverMisses(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	item := seedSkipCard(t, db, 50, 5, 24)
	_, _, streaks := newStreakStack(db, testNow)
	lastRun := testNow.AddDate(0, 0, -3)
	seedStreak(t, db, user.ID, 15, 15, 0, lastRun)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Purchase{
			UserID:     user.ID,
			ItemID:     item.ID,
			WeekBucket: weekBucket(testNow),
			ExpiresAt:  testNow.Add(12 * time.Hour),
		}).Error)
	}

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 15, streak.CurrentStreak)
	assert.Equal(t, 0.0, streak.PenaltyKm)
	// Forgiven days count as runs for continuity
	require.NotNil(t, streak.LastRunDate)
	assert.True(t, sameDay(*streak.LastRunDate, lastRun.AddDate(0, 0, 2)))

	var unused int64
	require.NoError(t, db.Model(&models.Purchase{}).
		Where("user_id = ? AND used_at IS NULL", user.ID).Count(&unused).Error)
	assert.Zero(t, unused)
}

func TestReconcilePartialCreditCoverage(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	item := seedSkipCard(t, db, 50, 5, 24)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 8, 8, 0, testNow.AddDate(0, 0, -3))

	require.NoError(t, db.Create(&models.Purchase{
		UserID:     user.ID,
		ItemID:     item.ID,
		WeekBucket: weekBucket(testNow),
		ExpiresAt:  testNow.Add(12 * time.Hour),
	}).Error)

	// Two missed days, one credit: the uncovered day becomes debt
	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 8, streak.CurrentStreak)
	assert.Equal(t, 2.0, streak.PenaltyKm)
}

func TestReconcileIgnoresExpiredCredits(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	item := seedSkipCard(t, db, 50, 5, 24)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 8, 8, 0, testNow.AddDate(0, 0, -2))

	require.NoError(t, db.Create(&models.Purchase{
		UserID:     user.ID,
		ItemID:     item.ID,
		WeekBucket: weekBucket(testNow),
		ExpiresAt:  testNow.Add(-time.Hour),
	}).Error)

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, added)
}

func TestReconcileNewUserIsNoop(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	targets, _, streaks := newStreakStack(db, testNow)

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 0, streak.CurrentStreak)
	assert.Nil(t, streak.LastRunDate)

	// Reconcile always leaves today's target in place
	today, err := targets.TodayTarget(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, today.StreakDay)
}

func TestReconcileConsecutiveDayIsClean(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 3, 3, 0, testNow.AddDate(0, 0, -1))

	added, err := streaks.Reconcile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, added)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 0.0, streak.PenaltyKm)
}

func TestSecondWorkoutSameDayDoesNotAdvance(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)

	_, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewStreak)

	_, res, err = streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 5.0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewStreak)

	assert.Equal(t, 1, loadStreak(t, db, user.ID).CurrentStreak)

	var workouts int64
	require.NoError(t, db.Model(&models.Workout{}).Where("user_id = ?", user.ID).Count(&workouts).Error)
	assert.Equal(t, int64(2), workouts)
}

func TestZeroDistanceWorkoutRecordedWithoutAdvance(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)

	workout, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 0})
	require.NoError(t, err)

	assert.False(t, res.TargetMet)
	assert.Equal(t, 0, res.RPEarned)
	assert.Equal(t, 0, res.NewStreak)
	assert.NotZero(t, workout.ID)
}

func TestLongestStreakNeverShrinks(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 2, 10, 0, testNow.AddDate(0, 0, -1))
	seedTarget(t, db, user.ID, testNow, 3, 1.0)

	_, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 1.0})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewStreak)

	streak := loadStreak(t, db, user.ID)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 10, streak.LongestStreak)
}

func TestWorkoutAdvanceRegeneratesTomorrow(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	_, _, streaks := newStreakStack(db, testNow)
	seedStreak(t, db, user.ID, 4, 4, 0, testNow.AddDate(0, 0, -1))
	seedTarget(t, db, user.ID, testNow, 5, 1.0)

	_, res, err := streaks.CompleteWorkout(user.ID, WorkoutInput{DistanceKm: 1.0})
	require.NoError(t, err)
	assert.Equal(t, 5, res.NewStreak)

	var tomorrow models.DailyTarget
	require.NoError(t, db.Where("user_id = ? AND date = ?", user.ID, dateOf(testNow).AddDate(0, 0, 1)).
		First(&tomorrow).Error)
	assert.Equal(t, 6, tomorrow.StreakDay)
	assert.Equal(t, TargetForStreakDay(6), tomorrow.TargetKm)
}
